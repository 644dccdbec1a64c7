package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"screen 12", "S-12"},
		{"Screen 4", "S-04"},
		{"go to screen number 7", "S-07"},
		{"S-04", "S-04"},
		{"s09", "S-09"},
		{"go to invoices", "S-04"},
		{"open the timecards", "S-05"},
		{"show me purchase orders", "S-03"},
		{"Take me to the dashboard.", "S-01"},
		{"message templates", "S-08"},
		{"I want to see my inbox", "S-07"},
		{"please navigate to platform validation", "S-11"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got, ok := Resolve(tt.command)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	for _, cmd := range []string{"", "   ", "screen 99", "make me a sandwich", "go to"} {
		_, ok := Resolve(cmd)
		assert.False(t, ok, cmd)
	}
}

func TestScreens_UniqueCodesAndCopy(t *testing.T) {
	list := Screens()
	seen := map[string]bool{}
	for _, s := range list {
		assert.False(t, seen[s.Code], s.Code)
		seen[s.Code] = true
		assert.NotEmpty(t, s.Path)
	}

	list[0].Name = "changed"
	assert.Equal(t, "Dashboard", Screens()[0].Name)
}
