package alias

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize folds a surface form into the canonical lookup key:
// lower-case, diacritics stripped, internal whitespace collapsed,
// leading/trailing punctuation removed. Matching is only deterministic
// if every alias and every query pass through this exact procedure.
func Normalize(raw string) string {
	s := strings.ToLower(raw)

	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}

	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})

	return strings.Join(strings.Fields(s), " ")
}
