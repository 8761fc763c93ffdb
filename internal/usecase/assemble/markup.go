package assemble

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy is safe for concurrent use once built.
	strictPolicy = bluemonday.StrictPolicy()

	mdImageRe    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLinkRe     = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdHeadingRe  = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	mdQuoteRe    = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	mdRuleRe     = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	mdEmphasisRe = regexp.MustCompile("(\\*\\*|__|~~|`+)")
	mdStarRe     = regexp.MustCompile(`(^|[^\w*])\*([^*\n]+)\*`)
	spacesRe     = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLinesRe = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
)

// CleanMarkup turns HTML or markdown passage text into plain readable text: tags are
// removed, entities decoded, markdown markers dropped and whitespace collapsed. Line
// breaks are kept, blank line runs become one newline.
func CleanMarkup(s string) string {
	if s == "" {
		return ""
	}
	s = strictPolicy.Sanitize(s)
	s = html.UnescapeString(s)

	s = mdImageRe.ReplaceAllString(s, "$1")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdRuleRe.ReplaceAllString(s, "")
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdQuoteRe.ReplaceAllString(s, "")
	s = mdEmphasisRe.ReplaceAllString(s, "")
	s = mdStarRe.ReplaceAllString(s, "$1$2")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	s = spacesRe.ReplaceAllString(s, " ")
	s = blankLinesRe.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
