// Package classify maps free-text questions to typed intents.
//
// Classification is a priority cascade over the entity catalog: confirmed entities,
// topic keyword rules, product families, price questions, product vocabulary and
// finally the general fallback. The first step that matches wins.
package classify

import (
	"sync/atomic"

	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

// Service classifies questions against the current catalog. The catalog can be
// swapped at runtime; in-flight classifications keep the catalog they started with.
type Service struct {
	cat atomic.Pointer[catalog.Catalog]
}

// New creates a classifier. A nil catalog selects the built-in default.
func New(c *catalog.Catalog) *Service {
	if c == nil {
		c = catalog.Default()
	}
	s := &Service{}
	s.cat.Store(c)
	return s
}

// Catalog returns the catalog currently in use.
func (s *Service) Catalog() *catalog.Catalog { return s.cat.Load() }

// SetCatalog replaces the catalog used by subsequent classifications.
func (s *Service) SetCatalog(c *catalog.Catalog) {
	if c != nil {
		s.cat.Store(c)
	}
}

// signals are the features extracted once from a question and shared by every step.
type signals struct {
	cat       *catalog.Catalog
	folded    string
	variant   string
	styles    []string
	asksPrice bool
}

type step func(sig signals) (intent.Intent, bool)

var cascade = []step{
	matchEntity,
	matchTopic,
	matchFamily,
	matchPrice,
	matchProductTerms,
}

// Classify never fails: input no step recognizes is classified as general.
func (s *Service) Classify(raw string) intent.Classification {
	c := s.cat.Load()
	folded := fold.String(raw)
	if folded == "" {
		return intent.Default()
	}
	sig := signals{
		cat:       c,
		folded:    folded,
		variant:   passage.ParseVariant(folded),
		styles:    findAll(folded, c.Styles),
		asksPrice: c.MatchPrice(folded),
	}
	for _, st := range cascade {
		if in, ok := st(sig); ok {
			return intent.New(in)
		}
	}
	return intent.Default()
}

func matchEntity(sig signals) (intent.Intent, bool) {
	e, ok := sig.cat.MatchEntity(sig.folded)
	if !ok {
		return nil, false
	}
	ref := e.Ref()
	return intent.ProductIntent{
		Kind:      intent.SubtypeSpecific,
		Entity:    ref,
		Terms:     ref.Terms,
		Variant:   sig.variant,
		Styles:    sig.styles,
		AsksPrice: sig.asksPrice,
	}, true
}

func matchTopic(sig signals) (intent.Intent, bool) {
	for _, r := range sig.cat.Rules {
		kw, ok := r.Match(sig.folded)
		if !ok {
			continue
		}
		if r.Domain == intent.BusinessHours {
			day, _ := fold.ContainsAny(sig.folded, sig.cat.Weekdays)
			return intent.HoursIntent{Day: day}, true
		}
		if r.Domain == intent.Product {
			return intent.ProductIntent{Kind: intent.SubtypeGeneral, Terms: []string{kw}, Styles: sig.styles}, true
		}
		if r.Domain == intent.General {
			return intent.GeneralIntent{}, true
		}
		return intent.TopicIntent{Area: r.Domain, Keywords: []string{kw}}, true
	}
	return nil, false
}

// matchFamily detects a product family. Without any qualifier the mention is bare
// and downstream grouping may ask the user to pick one of several entities.
func matchFamily(sig signals) (intent.Intent, bool) {
	for _, f := range sig.cat.Families {
		if _, ok := fold.ContainsAny(sig.folded, f.Terms); !ok {
			continue
		}
		terms := append([]string(nil), f.Terms...)
		qualifiers := findAll(sig.folded, f.Qualifiers)
		for _, st := range sig.styles {
			if !contains(qualifiers, st) && !contains(f.Terms, st) {
				qualifiers = append(qualifiers, st)
			}
		}
		terms = append(terms, qualifiers...)
		return intent.ProductIntent{
			Kind:      intent.SubtypeGeneric,
			Family:    f.Slug,
			Terms:     terms,
			Bare:      len(qualifiers) == 0 && sig.variant == "",
			Variant:   sig.variant,
			Styles:    sig.styles,
			AsksPrice: sig.asksPrice,
		}, true
	}
	return nil, false
}

func matchPrice(sig signals) (intent.Intent, bool) {
	if !sig.asksPrice {
		return nil, false
	}
	return intent.ProductIntent{
		Kind:      intent.SubtypePrice,
		Terms:     findAll(sig.folded, sig.cat.ProductTerms),
		Variant:   sig.variant,
		Styles:    sig.styles,
		AsksPrice: true,
	}, true
}

func matchProductTerms(sig signals) (intent.Intent, bool) {
	terms := findAll(sig.folded, sig.cat.ProductTerms)
	if len(terms) == 0 {
		return nil, false
	}
	return intent.ProductIntent{
		Kind:    intent.SubtypeGeneral,
		Terms:   terms,
		Variant: sig.variant,
		Styles:  sig.styles,
	}, true
}

func findAll(folded string, terms []string) []string {
	var out []string
	for _, t := range terms {
		if fold.Contains(folded, t) && !contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
