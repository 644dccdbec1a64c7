package templating

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		text string
		vars map[string]any
		want string
	}{
		{"single", "Hello {{name}}", map[string]any{"name": "Bob"}, "Hello Bob"},
		{"repeated", "{{name}}, {{name}}!", map[string]any{"name": "Bob"}, "Bob, Bob!"},
		{"whitespace", "Hi {{ name }}", map[string]any{"name": "Ana"}, "Hi Ana"},
		{"missing stays", "PO {{po}} for {{name}}", map[string]any{"name": "Ana"}, "PO {{po}} for Ana"},
		{"numbers", "Amount: {{amount}}", map[string]any{"amount": 1250.5}, "Amount: 1250.5"},
		{"json number", "Hours: {{hours}}", map[string]any{"hours": json.Number("40")}, "Hours: 40"},
		{"bool", "Urgent: {{urgent}}", map[string]any{"urgent": true}, "Urgent: true"},
		{"nil vars", "Hello {{name}}", nil, "Hello {{name}}"},
		{"dotted", "{{contractor.first}}", map[string]any{"contractor.first": "Li"}, "Li"},
		{"spaced key", "Hi {{ first name }}", map[string]any{"first name": "Ana"}, "Hi Ana"},
		{"non-ascii key", "Olá {{ nome_do_usuário }}", map[string]any{"nome_do_usuário": "João"}, "Olá João"},
		{"empty braces", "{{ }} and {{}}", map[string]any{"": "x"}, "{{ }} and {{}}"},
		{"nested braces", "{{{name}}}", map[string]any{"name": "Bob"}, "{Bob}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.text, tc.vars))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Dear {{name}}, invoice {{ invoice }} for {{name}} is due {{dueDate}}")
	assert.Equal(t, []string{"name", "invoice", "dueDate"}, got)
	assert.Empty(t, Placeholders("no placeholders"))
	assert.Equal(t, []string{"full name", "€"}, Placeholders("{{ full name }} owes {{€}}"))
}
