package passage

import (
	"regexp"
	"strconv"
	"strings"
)

// NonVintage is the variant marker for blends without a vintage year.
const NonVintage = "NV"

var (
	yearRe       = regexp.MustCompile(`\b(19[5-9]\d|20\d\d)\b`)
	nonVintageRe = regexp.MustCompile(`(?i)\b(nv|non[\s-]?vintage)\b`)
)

// ParseVariant extracts a vintage year ("2022") or NonVintage from text; "" when absent.
func ParseVariant(text string) string {
	if m := yearRe.FindString(text); m != "" {
		return m
	}
	if nonVintageRe.MatchString(text) {
		return NonVintage
	}
	return ""
}

// StripVariant removes vintage years and non-vintage markers from text.
func StripVariant(text string) string {
	text = yearRe.ReplaceAllString(text, " ")
	text = nonVintageRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// variantRank orders variants newest first: any numbered vintage ranks above NonVintage,
// which ranks above an unknown variant.
func variantRank(v string) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	if strings.EqualFold(v, NonVintage) {
		return 0
	}
	return -1
}

// CompareVariants returns a negative number when a sorts before b (a is newer),
// positive when after, zero when equivalent.
func CompareVariants(a, b string) int {
	return variantRank(b) - variantRank(a)
}
