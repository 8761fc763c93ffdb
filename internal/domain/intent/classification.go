package intent

// Classification is the read-only result of classifying one question.
type Classification struct {
	intent   Intent
	followUp bool
}

// New wraps an intent. A nil intent yields the general classification.
func New(i Intent) Classification {
	if i == nil {
		i = GeneralIntent{}
	}
	return Classification{intent: i}
}

// Default returns the general classification.
func Default() Classification { return New(GeneralIntent{}) }

// AsFollowUp returns a copy marked as synthesized from a clarification follow-up.
func (c Classification) AsFollowUp() Classification {
	c.followUp = true
	return c
}

// Intent returns the underlying variant.
func (c Classification) Intent() Intent {
	if c.intent == nil {
		return GeneralIntent{}
	}
	return c.intent
}

// Domain returns the classified domain.
func (c Classification) Domain() Domain { return c.Intent().Domain() }

// Subtype returns the domain refinement.
func (c Classification) Subtype() Subtype { return c.Intent().Subtype() }

// IsFollowUp reports whether the classification resolved a pending clarification.
func (c Classification) IsFollowUp() bool { return c.followUp }

// Product returns the product variant, if any.
func (c Classification) Product() (ProductIntent, bool) {
	p, ok := c.intent.(ProductIntent)
	return p, ok
}

// IsConfirmedEntity reports whether the catalog confirmed a specific entity.
func (c Classification) IsConfirmedEntity() bool {
	p, ok := c.Product()
	return ok && p.Entity != nil
}

// IsSpecificEntity reports whether the question targets one entity: a confirmed one,
// or a family narrowed by a qualifier.
func (c Classification) IsSpecificEntity() bool {
	p, ok := c.Product()
	if !ok {
		return false
	}
	return p.Entity != nil || (p.Family != "" && !p.Bare)
}

// IsGeneric reports whether the question is a family-level product question.
func (c Classification) IsGeneric() bool {
	p, ok := c.Product()
	return ok && p.Kind == SubtypeGeneric
}

// IsGenericEntity reports a bare family mention that may need disambiguation.
func (c Classification) IsGenericEntity() bool {
	p, ok := c.Product()
	return ok && p.Kind == SubtypeGeneric && p.Bare
}

// EntityName returns the confirmed entity's display name.
func (c Classification) EntityName() string {
	if p, ok := c.Product(); ok && p.Entity != nil {
		return p.Entity.Name
	}
	return ""
}

// EntityPattern returns the confirmed entity's canonical pattern.
func (c Classification) EntityPattern() string {
	if p, ok := c.Product(); ok && p.Entity != nil {
		return p.Entity.Pattern
	}
	return ""
}

// EntityTerms returns the terms extracted for validation.
func (c Classification) EntityTerms() []string {
	p, ok := c.Product()
	if !ok {
		return nil
	}
	if len(p.Terms) > 0 {
		return p.Terms
	}
	if p.Entity != nil {
		return p.Entity.Terms
	}
	return nil
}

// Family returns the product family slug (from the entity when confirmed).
func (c Classification) Family() string {
	p, ok := c.Product()
	if !ok {
		return ""
	}
	if p.Family != "" {
		return p.Family
	}
	if p.Entity != nil {
		return p.Entity.Family
	}
	return ""
}

// PreferredVariant returns the variant named in the question, if any.
func (c Classification) PreferredVariant() string {
	if p, ok := c.Product(); ok {
		return p.Variant
	}
	return ""
}

// Styles returns style qualifiers named in the question.
func (c Classification) Styles() []string {
	if p, ok := c.Product(); ok {
		return p.Styles
	}
	return nil
}

// AsksPrice reports whether a product question is about price.
func (c Classification) AsksPrice() bool {
	p, ok := c.Product()
	return ok && (p.AsksPrice || p.Kind == SubtypePrice)
}

// Summary is the flat, serializable view of a Classification.
type Summary struct {
	Domain            Domain   `json:"domain"`
	Subtype           Subtype  `json:"subtype,omitempty"`
	IsSpecificEntity  bool     `json:"is_specific_entity"`
	IsConfirmedEntity bool     `json:"is_confirmed_entity"`
	IsGenericEntity   bool     `json:"is_generic_entity"`
	IsFollowUp        bool     `json:"is_follow_up"`
	EntityName        string   `json:"entity_name,omitempty"`
	EntityPattern     string   `json:"entity_pattern,omitempty"`
	EntityTerms       []string `json:"entity_terms,omitempty"`
	Family            string   `json:"family,omitempty"`
	PreferredVariant  string   `json:"preferred_variant,omitempty"`
}

// Summary flattens the classification for transport and caching.
func (c Classification) Summary() Summary {
	return Summary{
		Domain:            c.Domain(),
		Subtype:           c.Subtype(),
		IsSpecificEntity:  c.IsSpecificEntity(),
		IsConfirmedEntity: c.IsConfirmedEntity(),
		IsGenericEntity:   c.IsGenericEntity(),
		IsFollowUp:        c.IsFollowUp(),
		EntityName:        c.EntityName(),
		EntityPattern:     c.EntityPattern(),
		EntityTerms:       c.EntityTerms(),
		Family:            c.Family(),
		PreferredVariant:  c.PreferredVariant(),
	}
}
