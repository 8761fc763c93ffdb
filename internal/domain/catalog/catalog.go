// Package catalog is the curated table of known entities and keyword rules the
// classifier, validator and conversation tracker match questions against.
//
// A Catalog is declarative data: entities with matcher records, product families,
// topic keyword rules, fuzzy aliases and follow-up aliases. Compile validates it and
// prepares the regular expressions; a compiled Catalog is read-only and safe for
// concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
)

// MatcherKind selects how a Matcher is evaluated.
type MatcherKind string

// Matcher kinds, evaluated in this order within one entity.
const (
	MatchRegex     MatcherKind = "regex"
	MatchExact     MatcherKind = "exact"
	MatchProximity MatcherKind = "proximity"
)

// ErrInvalidCatalog signals a catalog that failed validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Matcher is one way of recognizing an entity in a folded question.
type Matcher struct {
	Kind MatcherKind `yaml:"kind"`
	// Pattern is the regular expression for regex matchers.
	Pattern string `yaml:"pattern,omitempty"`
	// Phrase is the folded substring for exact matchers.
	Phrase string `yaml:"phrase,omitempty"`
	// Terms must all appear within Window word positions for proximity matchers.
	Terms  []string `yaml:"terms,omitempty"`
	Window int      `yaml:"window,omitempty"`

	re *regexp.Regexp
}

// Match reports whether the matcher recognizes folded text. words must be fold.Words(folded).
func (m Matcher) Match(folded string, words []string) bool {
	switch m.Kind {
	case MatchRegex:
		return m.re != nil && m.re.MatchString(folded)
	case MatchExact:
		return fold.Contains(folded, m.Phrase)
	case MatchProximity:
		return withinWindow(words, m.Terms, m.Window)
	default:
		return false
	}
}

// withinWindow reports whether every term occurs and the span between the first
// occurrences is at most window positions. Terms match word prefixes.
func withinWindow(words, terms []string, window int) bool {
	if len(terms) == 0 {
		return false
	}
	lo, hi := -1, -1
	for _, t := range terms {
		pos := -1
		for i, w := range words {
			if strings.HasPrefix(w, t) {
				pos = i
				break
			}
		}
		if pos < 0 {
			return false
		}
		if lo < 0 || pos < lo {
			lo = pos
		}
		if pos > hi {
			hi = pos
		}
	}
	return hi-lo < window
}

// Entity is a confirmed catalog product.
type Entity struct {
	Pattern  string    `yaml:"pattern"`
	Name     string    `yaml:"name"`
	Family   string    `yaml:"family,omitempty"`
	Terms    []string  `yaml:"terms,omitempty"`
	Matchers []Matcher `yaml:"matchers"`

	aliases []string
}

// Ref converts the entity into the reference carried by a product intent.
func (e Entity) Ref() *intent.EntityRef {
	terms := make([]string, len(e.Terms))
	copy(terms, e.Terms)
	return &intent.EntityRef{Pattern: e.Pattern, Name: e.Name, Family: e.Family, Terms: terms}
}

// Match evaluates regex matchers, then exact matchers and fuzzy aliases, then
// proximity matchers.
func (e Entity) Match(folded string, words []string) bool {
	for _, kind := range []MatcherKind{MatchRegex, MatchExact, MatchProximity} {
		for _, m := range e.Matchers {
			if m.Kind == kind && m.Match(folded, words) {
				return true
			}
		}
		if kind == MatchExact {
			if _, ok := fold.ContainsAny(folded, e.aliases); ok {
				return true
			}
		}
	}
	return false
}

// Family is a product family that can be mentioned without naming one entity.
type Family struct {
	Slug  string   `yaml:"slug"`
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
	// Qualifiers narrow a family mention to a style; their presence clears the bare flag.
	Qualifiers []string `yaml:"qualifiers,omitempty"`
}

// Rule is a keyword rule set for one topic domain.
type Rule struct {
	Domain  intent.Domain `yaml:"domain"`
	Terms   []string      `yaml:"terms"`
	Pattern string        `yaml:"pattern,omitempty"`

	re *regexp.Regexp
}

// Match returns the first matching keyword, or the regex match.
func (r Rule) Match(folded string) (string, bool) {
	if t, ok := fold.ContainsAny(folded, r.Terms); ok {
		return t, true
	}
	if r.re != nil {
		if m := r.re.FindString(folded); m != "" {
			return m, true
		}
	}
	return "", false
}

// FuzzyAlias maps a misspelling or synonym to an entity pattern.
type FuzzyAlias struct {
	Alias   string `yaml:"alias"`
	Pattern string `yaml:"pattern"`
}

// FollowUpAlias maps short answers to a clarification ("the reserve one") to an entity.
// An empty Family applies to any pending clarification.
type FollowUpAlias struct {
	Family  string   `yaml:"family,omitempty"`
	Phrases []string `yaml:"phrases"`
	Pattern string   `yaml:"pattern"`
}

// Catalog is the complete curated table.
type Catalog struct {
	Entities     []Entity                   `yaml:"entities"`
	Families     []Family                   `yaml:"families"`
	Rules        []Rule                     `yaml:"rules"`
	Styles       []string                   `yaml:"styles"`
	PricePattern string                     `yaml:"price_pattern"`
	ProductTerms []string                   `yaml:"product_terms"`
	FuzzyAliases []FuzzyAlias               `yaml:"fuzzy_aliases"`
	FollowUps    []FollowUpAlias            `yaml:"follow_ups"`
	ContentTypes map[intent.Domain][]string `yaml:"content_types"`
	Weekdays     []string                   `yaml:"weekdays,omitempty"`
	Instructions map[intent.Domain]string   `yaml:"instructions,omitempty"`

	priceRe   *regexp.Regexp
	byPattern map[string]int
	bySlug    map[string]int
}

// Compile validates the catalog, folds its phrases and compiles regular expressions.
// It must be called once before use.
func (c *Catalog) Compile() error {
	c.byPattern = make(map[string]int, len(c.Entities))
	c.bySlug = make(map[string]int, len(c.Families))

	for i := range c.Families {
		f := &c.Families[i]
		if f.Slug == "" || len(f.Terms) == 0 {
			return fmt.Errorf("%w: family %d needs slug and terms", ErrInvalidCatalog, i)
		}
		f.Terms = foldAll(f.Terms)
		f.Qualifiers = foldAll(f.Qualifiers)
		c.bySlug[f.Slug] = i
	}

	for i := range c.Entities {
		e := &c.Entities[i]
		if e.Pattern == "" {
			return fmt.Errorf("%w: entity %d has no pattern", ErrInvalidCatalog, i)
		}
		if _, dup := c.byPattern[e.Pattern]; dup {
			return fmt.Errorf("%w: duplicate entity pattern %q", ErrInvalidCatalog, e.Pattern)
		}
		if len(e.Matchers) == 0 {
			return fmt.Errorf("%w: entity %q has no matchers", ErrInvalidCatalog, e.Pattern)
		}
		if e.Name == "" {
			e.Name = e.Pattern
		}
		if e.Family != "" {
			if _, ok := c.bySlug[e.Family]; !ok {
				return fmt.Errorf("%w: entity %q references unknown family %q", ErrInvalidCatalog, e.Pattern, e.Family)
			}
		}
		e.Terms = foldAll(e.Terms)
		e.aliases = nil
		for j := range e.Matchers {
			if err := compileMatcher(&e.Matchers[j]); err != nil {
				return fmt.Errorf("%w: entity %q matcher %d: %v", ErrInvalidCatalog, e.Pattern, j, err)
			}
		}
		c.byPattern[e.Pattern] = i
	}

	for i := range c.Rules {
		r := &c.Rules[i]
		if !r.Domain.IsValid() {
			return fmt.Errorf("%w: rule %d has unknown domain %q", ErrInvalidCatalog, i, r.Domain)
		}
		r.Terms = foldAll(r.Terms)
		r.re = nil
		if r.Pattern != "" {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return fmt.Errorf("%w: rule %s: %v", ErrInvalidCatalog, r.Domain, err)
			}
			r.re = re
		}
	}

	c.Styles = foldAll(c.Styles)
	c.ProductTerms = foldAll(c.ProductTerms)
	c.Weekdays = foldAll(c.Weekdays)

	c.priceRe = nil
	if c.PricePattern != "" {
		re, err := regexp.Compile(c.PricePattern)
		if err != nil {
			return fmt.Errorf("%w: price_pattern: %v", ErrInvalidCatalog, err)
		}
		c.priceRe = re
	}

	for i := range c.FuzzyAliases {
		a := &c.FuzzyAliases[i]
		a.Alias = fold.String(a.Alias)
		idx, ok := c.byPattern[a.Pattern]
		if !ok || a.Alias == "" {
			return fmt.Errorf("%w: fuzzy alias %q -> unknown pattern %q", ErrInvalidCatalog, a.Alias, a.Pattern)
		}
		c.Entities[idx].aliases = append(c.Entities[idx].aliases, a.Alias)
	}

	for i := range c.FollowUps {
		f := &c.FollowUps[i]
		if _, ok := c.byPattern[f.Pattern]; !ok {
			return fmt.Errorf("%w: follow-up alias -> unknown pattern %q", ErrInvalidCatalog, f.Pattern)
		}
		if f.Family != "" {
			if _, ok := c.bySlug[f.Family]; !ok {
				return fmt.Errorf("%w: follow-up alias scoped to unknown family %q", ErrInvalidCatalog, f.Family)
			}
		}
		f.Phrases = foldAll(f.Phrases)
	}
	return nil
}

func compileMatcher(m *Matcher) error {
	switch m.Kind {
	case MatchRegex:
		if m.Pattern == "" {
			return errors.New("regex matcher needs a pattern")
		}
		re, err := regexp.Compile(m.Pattern)
		if err != nil {
			return err
		}
		m.re = re
	case MatchExact:
		m.Phrase = fold.String(m.Phrase)
		if m.Phrase == "" {
			return errors.New("exact matcher needs a phrase")
		}
	case MatchProximity:
		m.Terms = foldAll(m.Terms)
		if len(m.Terms) < 2 {
			return errors.New("proximity matcher needs at least two terms")
		}
		if m.Window <= 0 {
			m.Window = len(m.Terms) + 2
		}
	default:
		return fmt.Errorf("unknown matcher kind %q", m.Kind)
	}
	return nil
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold.String(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Entity looks up an entity by canonical pattern.
func (c *Catalog) Entity(pattern string) (Entity, bool) {
	i, ok := c.byPattern[pattern]
	if !ok {
		return Entity{}, false
	}
	return c.Entities[i], true
}

// Family looks up a family by slug.
func (c *Catalog) Family(slug string) (Family, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Family{}, false
	}
	return c.Families[i], true
}

// MatchEntity returns the first entity, in table order, that recognizes folded text.
func (c *Catalog) MatchEntity(folded string) (Entity, bool) {
	words := fold.Words(folded)
	for _, e := range c.Entities {
		if e.Match(folded, words) {
			return e, true
		}
	}
	return Entity{}, false
}

// MatchFuzzyAlias returns the pattern of the first fuzzy alias found in folded text.
func (c *Catalog) MatchFuzzyAlias(folded string) (FuzzyAlias, bool) {
	for _, a := range c.FuzzyAliases {
		if fold.Contains(folded, a.Alias) {
			return a, true
		}
	}
	return FuzzyAlias{}, false
}

// MatchFollowUp resolves a short follow-up answer. Aliases scoped to family are
// tried before unscoped ones.
func (c *Catalog) MatchFollowUp(folded, family string) (Entity, bool) {
	for _, scoped := range []bool{true, false} {
		for _, f := range c.FollowUps {
			if scoped != (f.Family != "") {
				continue
			}
			if scoped && f.Family != family {
				continue
			}
			if _, ok := fold.ContainsAny(folded, f.Phrases); ok {
				return c.Entity(f.Pattern)
			}
		}
	}
	return Entity{}, false
}

// MatchPrice reports whether folded text asks about price.
func (c *Catalog) MatchPrice(folded string) bool {
	return c.priceRe != nil && c.priceRe.MatchString(folded)
}

// ContentTypesFor returns the passage content types that belong to domain d.
func (c *Catalog) ContentTypesFor(d intent.Domain) []string {
	return c.ContentTypes[d]
}

// InstructionFor returns the prompt instruction for domain d, if configured.
func (c *Catalog) InstructionFor(d intent.Domain) string {
	return c.Instructions[d]
}
