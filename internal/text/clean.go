// internal/text/clean.go

package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean prepares a raw record for a model: NFC normalization, control and
// format characters removed, whitespace runs collapsed to one space, trimmed.
func Clean(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			continue
		}

		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	return b.String()
}

// OneLine collapses newlines and surrounding whitespace so s fits one record line
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
