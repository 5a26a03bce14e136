package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"plain terms", "button click", []string{"button", "click"}},
		{"lowercased", "Button CLICK", []string{"button", "click"}},
		{"operators stripped", `state AND (events OR "x")`, []string{"state", "and", "events", "or", "x"}},
		{"dotted name survives", "rx.box padding", []string{"rx.box", "padding"}},
		{"underscores survive", "on_click handler", []string{"on_click", "handler"}},
		{"edge punctuation trimmed", ".box_ _stack.", []string{"box", "stack"}},
		{"duplicates dropped", "box box BOX", []string{"box"}},
		{"only syntax", `()[]{}"'+-`, nil},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeQuery(tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeQuery_CapsTermCount(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += string(rune('a'+i%26)) + "x" + string(rune('a'+i/26)) + " "
	}
	terms := sanitizeQuery(long)
	assert.LessOrEqual(t, len(terms), maxQueryTerms)
}

func TestIsPrefixable(t *testing.T) {
	assert.True(t, isPrefixable("button"))
	assert.True(t, isPrefixable("v2"))
	assert.False(t, isPrefixable("rx.box"))
	assert.False(t, isPrefixable("on_click"))
	assert.False(t, isPrefixable(""))
}
