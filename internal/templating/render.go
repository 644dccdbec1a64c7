// Package templating fills {{key}} placeholders in message templates.
package templating

import (
	"fmt"
	"regexp"
	"strconv"
)

// placeholder captures any key without braces, trimmed of surrounding space.
var placeholder = regexp.MustCompile(`\{\{\s*([^{}\s](?:[^{}]*[^{}\s])?)\s*\}\}`)

// Render replaces every {{key}} (inner whitespace allowed) with the matching
// variable. Placeholders without a variable are left as they are.
func Render(text string, vars map[string]any) string {
	if len(vars) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok {
			return m
		}
		return stringify(v)
	})
}

// Placeholders lists the distinct keys used in text, in order of appearance.
func Placeholders(text string) []string {
	seen := map[string]bool{}
	keys := []string{}
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
