package assemble

import (
	"sort"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

// Grouped is the output of Group: either one primary with its sibling variants, or a
// list of distinct entities the user must choose between.
type Grouped struct {
	Primary                  *passage.Scored
	Siblings                 []bundle.Sibling
	UniqueEntities           []passage.Scored
	Variants                 map[string][]bundle.Sibling
	MultipleEntitiesDetected bool
}

// Group clusters scored passages into variant groups.
//
// A bare family question that matched more than one distinct entity yields one
// representative per entity and MultipleEntitiesDetected. Otherwise the passages sharing
// the base name of the top-scored passage form a VariantGroup; its first member is the
// primary and the rest are recorded as siblings. scored must be ordered as Score returns it.
func Group(cat *catalog.Catalog, scored []passage.Scored, cls intent.Classification) Grouped {
	if len(scored) == 0 {
		return Grouped{}
	}

	if cls.IsGenericEntity() {
		if unique, variants := uniqueEntities(cat, scored, cls); len(unique) > 1 {
			return Grouped{UniqueEntities: unique, Variants: variants, MultipleEntitiesDetected: true}
		}
	}

	base := passage.BaseName(scored[0].SourceID)
	var members []passage.Scored
	for _, s := range scored {
		if passage.BaseName(s.SourceID) == base {
			members = append(members, s)
		}
	}
	group := passage.NewVariantGroup(base, members, cls.PreferredVariant())
	primary, _ := group.Primary()

	var siblings []bundle.Sibling
	for _, s := range group.Siblings() {
		siblings = append(siblings, bundle.Sibling{
			SourceID:  s.SourceID,
			Variant:   s.Variant,
			Available: s.Available,
		})
	}
	return Grouped{Primary: &primary, Siblings: siblings}
}

// uniqueEntities keeps the best passage per normalized entity name among passages whose
// content type belongs to the domain (or is unset). Score ties are broken by the variant
// group order. The second result lists every variant of each entity in variant group
// order, keyed by the base name of the representative's source.
func uniqueEntities(
	cat *catalog.Catalog, scored []passage.Scored, cls intent.Classification,
) ([]passage.Scored, map[string][]bundle.Sibling) {
	var contentTypes []string
	if cat != nil {
		contentTypes = cat.ContentTypesFor(cls.Domain())
	}
	preferred := cls.PreferredVariant()
	best := make(map[string]passage.Scored)
	members := make(map[string][]passage.Scored)
	for _, s := range scored {
		ct := s.Metadata.ContentType
		if ct != "" && len(contentTypes) > 0 && !hasFold(contentTypes, ct) {
			continue
		}
		key := passage.EntityKey(s.EntityName)
		if key == "" {
			key = passage.BaseName(s.SourceID)
		}
		members[key] = append(members[key], s)
		cur, ok := best[key]
		if !ok || s.Score > cur.Score || (s.Score == cur.Score && passage.Less(s, cur, preferred)) {
			best[key] = s
		}
	}

	out := make([]passage.Scored, 0, len(best))
	variants := make(map[string][]bundle.Sibling, len(best))
	for key, s := range best {
		out = append(out, s)
		group := passage.NewVariantGroup(key, members[key], preferred)
		sibs := make([]bundle.Sibling, 0, group.Len())
		for _, m := range group.Members() {
			sibs = append(sibs, bundle.Sibling{SourceID: m.SourceID, Variant: m.Variant, Available: m.Available})
		}
		variants[passage.BaseName(s.SourceID)] = sibs
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		ki, kj := passage.EntityKey(out[i].EntityName), passage.EntityKey(out[j].EntityName)
		if ki != kj {
			return ki < kj
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out, variants
}
