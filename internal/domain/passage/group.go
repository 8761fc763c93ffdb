package passage

import (
	"sort"
	"strings"
)

// VariantGroup is a cluster of scored passages sharing one normalized base entity name.
// Members are kept in the deterministic order defined by Less.
type VariantGroup struct {
	base    string
	members []Scored
}

// NewVariantGroup copies members and orders them. preferred is the variant the user asked
// for ("" for none).
func NewVariantGroup(base string, members []Scored, preferred string) VariantGroup {
	sorted := make([]Scored, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j], preferred)
	})
	return VariantGroup{base: base, members: sorted}
}

// Less reports whether a ranks before b inside a variant group:
// available before unavailable, then the preferred variant, then newest variant
// (non-vintage after any numbered vintage), then higher score, then source id.
func Less(a, b Scored, preferred string) bool {
	if a.Available != b.Available {
		return a.Available
	}
	if preferred != "" {
		ap := strings.EqualFold(a.Variant, preferred)
		bp := strings.EqualFold(b.Variant, preferred)
		if ap != bp {
			return ap
		}
	}
	if c := CompareVariants(a.Variant, b.Variant); c != 0 {
		return c < 0
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.SourceID < b.SourceID
}

// Base returns the shared normalized base name.
func (g VariantGroup) Base() string { return g.base }

// Members returns the ordered members.
func (g VariantGroup) Members() []Scored { return g.members }

// Len returns the number of members.
func (g VariantGroup) Len() int { return len(g.members) }

// Primary returns the canonical representative.
func (g VariantGroup) Primary() (Scored, bool) {
	if len(g.members) == 0 {
		return Scored{}, false
	}
	return g.members[0], true
}

// Siblings returns every member except the primary.
func (g VariantGroup) Siblings() []Scored {
	if len(g.members) < 2 {
		return nil
	}
	return g.members[1:]
}
