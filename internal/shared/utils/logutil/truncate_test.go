package logutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{"empty", "", 10, ""},
		{"zero limit", "payload", 0, "..."},
		{"negative limit", "payload", -1, "..."},
		{"shorter", "ai-chat", 10, "ai-chat"},
		{"exact", "ai-chat", 7, "ai-chat"},
		{"longer", `{"event":{"kind":"set"}}`, 9, `{"event":...`},
		{"arabic kept whole", "محادثة ذكية", 6, "محادثة..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxRunes))
		})
	}
}

func TestTruncate_AlwaysValidUTF8(t *testing.T) {
	s := strings.Repeat("ميزة", 100)
	for i := 1; i < 50; i++ {
		out := Truncate(s, i)
		assert.True(t, utf8.ValidString(out))
		assert.Equal(t, i+3, utf8.RuneCountInString(out))
	}
}
