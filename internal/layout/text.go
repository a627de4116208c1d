package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText normalizes recognized text: Unicode NFC normalization, then
// collapsing whitespace runs to single spaces and trimming. Running it on
// its own output yields the same string.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
