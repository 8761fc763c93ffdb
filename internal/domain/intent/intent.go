// Package intent defines the typed classification of a user question.
//
// An Intent is a closed sum type: Product, Topic, Hours and General are the only
// implementations. Each variant carries only the fields that make sense for it, and
// Classification exposes the flat view the retrieval pipeline consumes.
package intent

// Domain is the coarse subject area of a question.
type Domain string

// Known domains.
const (
	Product        Domain = "product"
	Membership     Domain = "membership"
	Loyalty        Domain = "loyalty"
	Visiting       Domain = "visiting"
	Production     Domain = "production"
	Sustainability Domain = "sustainability"
	Merchandise    Domain = "merchandise"
	BusinessHours  Domain = "business_hours"
	General        Domain = "general"
)

var allDomains = []Domain{
	Product, Membership, Loyalty, Visiting, Production,
	Sustainability, Merchandise, BusinessHours, General,
}

// Domains returns every known domain in declaration order.
func Domains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

// IsValid reports whether d is one of the known domains.
func (d Domain) IsValid() bool {
	for _, known := range allDomains {
		if d == known {
			return true
		}
	}
	return false
}

// IsTopic reports whether d is answered from general knowledge passages (Topic intents).
func (d Domain) IsTopic() bool {
	switch d {
	case Membership, Loyalty, Visiting, Production, Sustainability, Merchandise:
		return true
	default:
		return false
	}
}

// Subtype refines a domain. Only product questions use subtypes other than None.
type Subtype string

// Product subtypes.
const (
	SubtypeNone     Subtype = ""
	SubtypeSpecific Subtype = "specific"
	SubtypeGeneric  Subtype = "generic"
	SubtypePrice    Subtype = "price"
	SubtypeGeneral  Subtype = "general"
)

// Intent is implemented by the classification variants of this package only.
type Intent interface {
	Domain() Domain
	Subtype() Subtype
	sealed()
}

// EntityRef identifies a confirmed catalog entity.
type EntityRef struct {
	Pattern string   // canonical pattern, e.g. "reserve-cabernet-franc"
	Name    string   // display name
	Family  string   // family slug, e.g. "cabernet-franc"
	Terms   []string // terms used for validation and scoring
}

// ProductIntent is a question about wines or other catalog products.
type ProductIntent struct {
	Kind Subtype
	// Entity is set when the catalog confirmed a specific product.
	Entity *EntityRef
	// Family is the product family slug for generic questions ("rose").
	Family string
	// Terms are the entity or family terms extracted from the question.
	Terms []string
	// Bare marks a family mention without any qualifier: several variants may need
	// disambiguation.
	Bare bool
	// Variant is the preferred variant (vintage year or "NV") named in the question.
	Variant string
	// Styles are style qualifiers found in the question ("sparkling", "dry").
	Styles    []string
	AsksPrice bool
}

// Domain implements Intent.
func (ProductIntent) Domain() Domain { return Product }

// Subtype implements Intent.
func (p ProductIntent) Subtype() Subtype {
	if p.Kind == SubtypeNone {
		return SubtypeGeneral
	}
	return p.Kind
}

func (ProductIntent) sealed() {}

// TopicIntent is a question about one of the non-product knowledge areas.
type TopicIntent struct {
	Area     Domain
	Keywords []string
}

// Domain implements Intent.
func (t TopicIntent) Domain() Domain { return t.Area }

// Subtype implements Intent.
func (TopicIntent) Subtype() Subtype { return SubtypeNone }

func (TopicIntent) sealed() {}

// HoursIntent is a business-hours question. Day is a lower-case weekday, "today",
// "tomorrow" or empty.
type HoursIntent struct {
	Day string
}

// Domain implements Intent.
func (HoursIntent) Domain() Domain { return BusinessHours }

// Subtype implements Intent.
func (HoursIntent) Subtype() Subtype { return SubtypeNone }

func (HoursIntent) sealed() {}

// GeneralIntent is the fallback for questions no rule matched.
type GeneralIntent struct{}

// Domain implements Intent.
func (GeneralIntent) Domain() Domain { return General }

// Subtype implements Intent.
func (GeneralIntent) Subtype() Subtype { return SubtypeNone }

func (GeneralIntent) sealed() {}
