// Package fold normalizes free text for rule matching: lower case, no accents,
// punctuation turned into spaces, single spaces.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// String folds s. "Rosé, 2022!" becomes "rose 2022". Digits and '$' are kept.
func String(s string) string {
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	space := true
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '$':
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Words splits a folded string into words.
func Words(folded string) []string {
	return strings.Fields(folded)
}

// Contains reports whether term occurs in folded text starting at a word boundary.
// Both arguments must already be folded. "tour" matches "tours" and "touring" but not
// "contour".
func Contains(folded, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(" "+folded, " "+term)
}

// ContainsAny reports whether any term occurs in folded text; it returns the first match.
func ContainsAny(folded string, terms []string) (string, bool) {
	for _, t := range terms {
		if Contains(folded, t) {
			return t, true
		}
	}
	return "", false
}

// Slug folds s and joins words with '-'.
func Slug(s string) string {
	return strings.Join(Words(String(s)), "-")
}
