package assemble

import (
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

// Selection limits.
const (
	DefaultMaxDocuments             = 3
	DefaultMaxDisambiguationOptions = 5
)

// Limits bounds the selected context.
type Limits struct {
	MaxDocuments             int
	MaxDisambiguationOptions int
}

func (l Limits) withDefaults() Limits {
	if l.MaxDocuments <= 0 {
		l.MaxDocuments = DefaultMaxDocuments
	}
	if l.MaxDisambiguationOptions <= 0 {
		l.MaxDisambiguationOptions = DefaultMaxDisambiguationOptions
	}
	return l
}

// Select builds the bounded document list handed to synthesis.
//
// In disambiguation mode every unique entity is returned (up to the options limit).
// Otherwise the primary comes first, followed by the best passages that are neither the
// primary nor one of its siblings. Without a primary the top scored passages are used.
func Select(g Grouped, scored []passage.Scored, limits Limits) []passage.Passage {
	limits = limits.withDefaults()

	if len(g.UniqueEntities) > 1 {
		n := min(len(g.UniqueEntities), limits.MaxDisambiguationOptions)
		out := make([]passage.Passage, 0, n)
		for _, s := range g.UniqueEntities[:n] {
			out = append(out, s.Passage)
		}
		return out
	}

	if g.Primary == nil {
		n := min(len(scored), limits.MaxDocuments)
		out := make([]passage.Passage, 0, n)
		for _, s := range scored[:n] {
			out = append(out, s.Passage)
		}
		return out
	}

	skip := map[string]bool{g.Primary.SourceID: true}
	for _, sib := range g.Siblings {
		skip[sib.SourceID] = true
	}
	out := []passage.Passage{g.Primary.Passage}
	for _, s := range scored {
		if len(out) >= limits.MaxDocuments {
			break
		}
		if skip[s.SourceID] {
			continue
		}
		skip[s.SourceID] = true
		out = append(out, s.Passage)
	}
	return out
}
