package answer

import "github.com/kailas-cloud/sommelier/internal/domain/intent"

// DefaultK is used when neither the domain/subtype nor the domain has an entry.
const DefaultK = 8

// KTable maps "domain" or "domain/subtype" to the number of passages to retrieve.
type KTable map[string]int

// DefaultKTable returns the built-in retrieval depths.
func DefaultKTable() KTable {
	return KTable{
		"product/specific": 5,
		"product/generic":  15,
		"product/price":    10,
		"product/general":  12,
		"membership":       6,
		"loyalty":          6,
		"visiting":         8,
		"production":       8,
		"sustainability":   8,
		"merchandise":      10,
		"business_hours":   3,
		"general":          8,
	}
}

// Merge returns a copy of t with overrides applied. Non-positive overrides are ignored.
func (t KTable) Merge(overrides map[string]int) KTable {
	out := make(KTable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// K returns the retrieval depth for a classification.
func (t KTable) K(cls intent.Classification) int {
	d := string(cls.Domain())
	if st := cls.Subtype(); st != intent.SubtypeNone {
		if k, ok := t[d+"/"+string(st)]; ok && k > 0 {
			return k
		}
	}
	if k, ok := t[d]; ok && k > 0 {
		return k
	}
	return DefaultK
}
