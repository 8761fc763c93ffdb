package conversation

import (
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

var ordinals = map[string]int{
	"first": 0, "1st": 0,
	"second": 1, "2nd": 1, "two": 1,
	"third": 2, "3rd": 2, "three": 2,
	"fourth": 3, "4th": 3,
	"fifth": 4, "5th": 4,
	"last": -1,
}

var stopWords = map[string]bool{
	"the": true, "of": true, "and": true, "one": true, "our": true, "your": true, "a": true,
	"wine": true, "please": true, "that": true, "this": true,
}

// candidatesFrom captures one candidate per distinct entity among the bundle documents,
// with every variant the bundle retrieved for it.
func candidatesFrom(b bundle.Bundle) []Candidate {
	seen := make(map[string]bool)
	var out []Candidate
	for _, d := range b.Documents {
		title := firstLine(d.Content)
		c := Candidate{
			Name:     passage.StripVariant(title),
			Pattern:  passage.BaseName(d.SourceID),
			Variant:  passage.ParseVariant(title),
			SourceID: d.SourceID,
		}
		if c.Variant == "" {
			c.Variant = passage.ParseVariant(fold.String(d.SourceID))
		}
		if c.Name == "" {
			c.Name = c.Pattern
		}
		if seen[c.Pattern] {
			continue
		}
		seen[c.Pattern] = true
		for _, v := range b.Variants[c.Pattern] {
			if v.Variant != "" {
				c.Variants = append(c.Variants, v.Variant)
			}
		}
		out = append(out, c)
	}
	return out
}

func firstLine(content string) string {
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

// resolveCandidate picks the candidate a short answer refers to.
func resolveCandidate(cat *catalog.Catalog, st State, folded, variant string) (Candidate, bool) {
	if len(st.Candidates) == 0 {
		return Candidate{}, false
	}
	if c, ok := byNameWords(cat, st, folded); ok {
		return c, true
	}
	if variant != "" {
		for _, c := range st.Candidates {
			if strings.EqualFold(c.Variant, variant) {
				return c, true
			}
		}
		// A vintage that was retrieved but not offered still names its entity.
		for _, c := range st.Candidates {
			if c.HasVariant(variant) {
				return c, true
			}
		}
	}
	return byOrdinal(st.Candidates, folded)
}

// byNameWords matches distinctive words of candidate names. Words shared by the
// family ("rose") or by every candidate do not distinguish anything.
func byNameWords(cat *catalog.Catalog, st State, folded string) (Candidate, bool) {
	common := make(map[string]bool)
	if f, ok := cat.Family(st.Family); ok {
		for _, t := range f.Terms {
			for _, w := range fold.Words(t) {
				common[w] = true
			}
		}
	}
	counts := make(map[string]int)
	for _, c := range st.Candidates {
		for _, w := range uniqueWords(c.Name) {
			counts[w]++
		}
	}
	for w, n := range counts {
		if n == len(st.Candidates) && len(st.Candidates) > 1 {
			common[w] = true
		}
	}

	query := make(map[string]bool)
	for _, w := range fold.Words(folded) {
		query[w] = true
	}

	best, bestHits := -1, 0
	for i, c := range st.Candidates {
		hits := 0
		for _, w := range uniqueWords(c.Name) {
			if common[w] || stopWords[w] || len(w) < 3 {
				continue
			}
			if query[w] {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if best < 0 {
		return Candidate{}, false
	}
	return st.Candidates[best], true
}

func byOrdinal(candidates []Candidate, folded string) (Candidate, bool) {
	for _, w := range fold.Words(folded) {
		idx, ok := ordinals[w]
		if !ok {
			continue
		}
		if idx < 0 {
			idx = len(candidates) - 1
		}
		if idx < len(candidates) {
			return candidates[idx], true
		}
	}
	return Candidate{}, false
}

func uniqueWords(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range fold.Words(fold.String(s)) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// refFor prefers the catalog entity whose pattern matches the candidate.
func refFor(cat *catalog.Catalog, c Candidate, family string) *intent.EntityRef {
	if e, ok := cat.Entity(c.Pattern); ok {
		return e.Ref()
	}
	for _, e := range cat.Entities {
		if strings.Contains(c.Pattern, e.Pattern) {
			return e.Ref()
		}
	}
	return &intent.EntityRef{
		Pattern: c.Pattern,
		Name:    c.Name,
		Family:  family,
		Terms:   uniqueWords(c.Name),
	}
}
