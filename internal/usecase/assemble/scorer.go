package assemble

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

// Score weights. Boosts are additive.
const (
	weightSourceTerm    = 10
	weightContentTerm   = 5
	boostContentType    = 100
	boostFamily         = 200
	boostConfirmed      = 60
	boostPreferredMatch = 100

	minTermLength = 4
)

var (
	statusRe     = regexp.MustCompile(`(?im)^[\s*_>-]*status[\s*_]*:[\s*_]*([a-z][a-z ]*)`)
	titleMarkRe  = regexp.MustCompile(`^[\s#>*_-]+|[*_]+$`)
	titleTagRe   = regexp.MustCompile(`<[^>]*>`)
	availableSet = map[string]bool{"available": true, "in stock": true}
	soldOutSet   = map[string]bool{
		"sold out": true, "unavailable": true, "out of stock": true, "archived": true,
		"discontinued": true,
	}

	// A leading negation ("not available", "no longer in stock") marks the passage unavailable.
	negations = map[string]bool{"not": true, "no": true, "none": true}
)

// Score ranks passages by keyword overlap with the question plus intent boosts.
// Passages scoring zero or less are dropped. The result is ordered by score descending,
// then source id ascending.
func Score(
	cat *catalog.Catalog, passages []passage.Passage, raw string, cls intent.Classification,
) []passage.Scored {
	terms := scoringTerms(raw)
	var contentTypes []string
	if cat != nil {
		contentTypes = cat.ContentTypesFor(cls.Domain())
	}
	family := cls.Family()
	familyBoost := cls.IsGeneric() && family != ""
	pattern := strings.ToLower(cls.EntityPattern())
	preferred := cls.PreferredVariant()
	styles := cls.Styles()

	out := make([]passage.Scored, 0, len(passages))
	for _, p := range passages {
		s := annotate(p)
		src := strings.ToLower(p.SourceID)
		srcFolded := fold.String(p.SourceID)
		content := fold.String(p.Content)

		score := 0
		for _, t := range terms {
			if strings.Contains(srcFolded, t) {
				score += weightSourceTerm
			}
			if strings.Contains(content, t) {
				score += weightContentTerm
			}
		}
		if hasFold(contentTypes, p.Metadata.ContentType) {
			score += boostContentType
		}
		if familyBoost {
			if strings.Contains(passage.BaseName(p.SourceID), family) ||
				strings.Contains(passage.EntityKey(s.EntityName), family) {
				score += boostFamily
			}
		}
		if pattern != "" && strings.Contains(src, pattern) {
			score += boostConfirmed
		}
		if preferredMatch(s, srcFolded, preferred, styles) {
			score += boostPreferredMatch
		}

		if score <= 0 {
			continue
		}
		s.Score = score
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out
}

// scoringTerms returns distinct folded question words of at least minTermLength runes.
func scoringTerms(raw string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, w := range fold.Words(fold.String(raw)) {
		if len([]rune(w)) < minTermLength || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	return terms
}

// annotate extracts the entity name, variant and availability of a passage.
func annotate(p passage.Passage) passage.Scored {
	title := Title(p.Content)
	variant := passage.ParseVariant(title)
	if variant == "" {
		variant = passage.ParseVariant(fold.String(p.SourceID))
	}
	name := passage.StripVariant(title)
	if name == "" {
		name = passage.BaseName(p.SourceID)
	}
	return passage.Scored{
		Passage:    p,
		EntityName: name,
		Variant:    variant,
		Available:  availability(p),
	}
}

// Title returns the first non-empty line of content without markup.
func Title(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = titleTagRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(titleMarkRe.ReplaceAllString(line, ""))
		if line != "" {
			return line
		}
	}
	return ""
}

func availability(p passage.Passage) bool {
	if p.Metadata.Availability != nil {
		return *p.Metadata.Availability
	}
	m := statusRe.FindStringSubmatch(p.Content)
	if m == nil {
		return true
	}
	words := strings.Fields(strings.ToLower(m[1]))
	if len(words) > 0 && negations[words[0]] {
		return false
	}
	status := strings.Join(words, " ")
	for s := range soldOutSet {
		if strings.HasPrefix(status, s) {
			return false
		}
	}
	for s := range availableSet {
		if strings.HasPrefix(status, s) {
			return true
		}
	}
	return true
}

func preferredMatch(s passage.Scored, srcFolded, preferred string, styles []string) bool {
	if preferred != "" && strings.EqualFold(s.Variant, preferred) {
		return true
	}
	if len(styles) == 0 {
		return false
	}
	name := fold.String(s.EntityName)
	for _, st := range styles {
		if fold.Contains(name, st) || fold.Contains(srcFolded, st) {
			return true
		}
	}
	return false
}

func hasFold(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
