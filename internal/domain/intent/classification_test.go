package intent

import "testing"

func TestDefault_IsGeneral(t *testing.T) {
	c := Default()
	if c.Domain() != General {
		t.Fatalf("expected general, got %q", c.Domain())
	}
	if c.IsConfirmedEntity() || c.IsSpecificEntity() || c.IsGenericEntity() {
		t.Error("general classification must not flag entities")
	}
	if New(nil).Domain() != General {
		t.Error("nil intent must fall back to general")
	}
	var zero Classification
	if zero.Domain() != General {
		t.Error("zero classification must read as general")
	}
}

func TestProduct_ConfirmedEntity(t *testing.T) {
	c := New(ProductIntent{
		Kind: SubtypeSpecific,
		Entity: &EntityRef{
			Pattern: "reserve-cabernet-franc",
			Name:    "Reserve Cabernet Franc",
			Family:  "cabernet-franc",
			Terms:   []string{"reserve", "cabernet", "franc"},
		},
		Variant: "2022",
	})

	if !c.IsConfirmedEntity() || !c.IsSpecificEntity() {
		t.Fatal("expected confirmed specific entity")
	}
	if c.IsGenericEntity() {
		t.Error("confirmed entity must not be generic")
	}
	if c.EntityPattern() != "reserve-cabernet-franc" {
		t.Errorf("unexpected pattern %q", c.EntityPattern())
	}
	if c.Family() != "cabernet-franc" {
		t.Errorf("family should come from entity, got %q", c.Family())
	}
	if got := c.EntityTerms(); len(got) != 3 {
		t.Errorf("expected entity terms, got %v", got)
	}
	if c.PreferredVariant() != "2022" {
		t.Errorf("unexpected variant %q", c.PreferredVariant())
	}
}

func TestProduct_GenericFamily(t *testing.T) {
	bare := New(ProductIntent{Kind: SubtypeGeneric, Family: "rose", Terms: []string{"rose"}, Bare: true})
	if !bare.IsGenericEntity() || !bare.IsGeneric() {
		t.Error("bare family must be a generic entity")
	}
	if bare.IsSpecificEntity() {
		t.Error("bare family must not be specific")
	}

	qualified := New(ProductIntent{Kind: SubtypeGeneric, Family: "rose", Terms: []string{"rose", "sparkling"}})
	if qualified.IsGenericEntity() {
		t.Error("qualified family must not be flagged for disambiguation")
	}
	if !qualified.IsSpecificEntity() {
		t.Error("qualified family narrows to a specific entity")
	}
}

func TestFollowUp_DoesNotMutateOriginal(t *testing.T) {
	c := New(ProductIntent{Kind: SubtypeSpecific})
	f := c.AsFollowUp()
	if c.IsFollowUp() {
		t.Error("original must stay unchanged")
	}
	if !f.IsFollowUp() || !f.Summary().IsFollowUp {
		t.Error("copy must be a follow-up")
	}
}

func TestTopicAndHours(t *testing.T) {
	topic := New(TopicIntent{Area: Membership, Keywords: []string{"wine club"}})
	if topic.Domain() != Membership || topic.Subtype() != SubtypeNone {
		t.Errorf("unexpected topic classification %q/%q", topic.Domain(), topic.Subtype())
	}
	if topic.AsksPrice() {
		t.Error("topics never ask price")
	}
	hours := New(HoursIntent{Day: "today"})
	if hours.Domain() != BusinessHours {
		t.Errorf("unexpected domain %q", hours.Domain())
	}
}

func TestDomain_IsValid(t *testing.T) {
	for _, d := range Domains() {
		if !d.IsValid() {
			t.Errorf("%q should be valid", d)
		}
	}
	if Domain("wine").IsValid() {
		t.Error("unknown domain must be invalid")
	}
	if !Loyalty.IsTopic() || Product.IsTopic() {
		t.Error("unexpected IsTopic result")
	}
}

func TestProductSubtype_DefaultsToGeneral(t *testing.T) {
	if (ProductIntent{}).Subtype() != SubtypeGeneral {
		t.Error("empty product kind should read as general")
	}
}
