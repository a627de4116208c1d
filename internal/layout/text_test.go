package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"trims", "  hello  ", "hello"},
		{"collapses spaces", "a   b    c", "a b c"},
		{"collapses mixed whitespace", "a\t b\n c", "a b c"},
		{"whitespace only", " \t\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{"  a  b ", "x\ty\nz", "already clean"}
	for _, in := range inputs {
		once := CleanText(in)
		assert.Equal(t, once, CleanText(once))
	}
}

func TestCleanText_NormalizesUnicode(t *testing.T) {
	// Decomposed e + combining acute normalizes to the precomposed form.
	assert.Equal(t, "caf\u00e9", CleanText("cafe\u0301"))
}
