package classify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
)

func TestClassify_ConfirmedEntity(t *testing.T) {
	svc := New(nil)

	for _, q := range []string{
		"2022 reserve cabernet franc",
		"  RESERVE Cabernet   Franc ",
		"Tell me about the reserve cab",
		"reserve cabernet franc?",
	} {
		cls := svc.Classify(q)
		assert.True(t, cls.IsConfirmedEntity(), q)
		assert.True(t, cls.IsSpecificEntity(), q)
		assert.Equal(t, "reserve-cabernet-franc", cls.EntityPattern(), q)
		assert.Equal(t, intent.Product, cls.Domain(), q)
		assert.Equal(t, intent.SubtypeSpecific, cls.Subtype(), q)
	}

	cls := svc.Classify("2022 reserve cabernet franc")
	assert.Equal(t, "2022", cls.PreferredVariant())
	assert.Equal(t, "Reserve Cabernet Franc", cls.EntityName())
	assert.Equal(t, "cabernet-franc", cls.Family())
}

func TestClassify_BareFamilyIsGenericEntity(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("tell me about rosé")
	require.Equal(t, intent.Product, cls.Domain())
	assert.Equal(t, intent.SubtypeGeneric, cls.Subtype())
	assert.True(t, cls.IsGenericEntity())
	assert.False(t, cls.IsSpecificEntity())
	assert.False(t, cls.IsConfirmedEntity())
	assert.Equal(t, "rose", cls.Family())
	assert.Contains(t, cls.EntityTerms(), "rose")
}

func TestClassify_QualifiedFamilyIsNotBare(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("any sweet riesling?")
	require.Equal(t, intent.SubtypeGeneric, cls.Subtype())
	assert.False(t, cls.IsGenericEntity())
	assert.True(t, cls.IsSpecificEntity())
	assert.Contains(t, cls.EntityTerms(), "sweet")

	cls = svc.Classify("your 2021 chardonnay")
	assert.False(t, cls.IsGenericEntity(), "a vintage narrows the family")
	assert.Equal(t, "2021", cls.PreferredVariant())
}

func TestClassify_TopicPriority(t *testing.T) {
	svc := New(nil)

	tests := []struct {
		q    string
		want intent.Domain
	}{
		{"What are your hours on Saturday?", intent.BusinessHours},
		// business hours outrank membership
		{"what time do club members pick up shipments", intent.BusinessHours},
		{"How do I join the wine club?", intent.Membership},
		{"how many reward points do I have", intent.Loyalty},
		{"when do you harvest the grapes", intent.Production},
		{"is the vineyard organic", intent.Sustainability},
		{"can I bring my dog to the tasting room", intent.Visiting},
		{"do you sell gift cards", intent.Merchandise},
		{"hello there", intent.General},
		{"", intent.General},
	}
	for _, tc := range tests {
		t.Run(tc.q, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.Classify(tc.q).Domain())
		})
	}
}

func TestClassify_Hours(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("Are you open on Sunday?")
	h, ok := cls.Intent().(intent.HoursIntent)
	require.True(t, ok)
	assert.Equal(t, "sunday", h.Day)
}

func TestClassify_TopicCarriesKeyword(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("Tell me about the wine club")
	topic, ok := cls.Intent().(intent.TopicIntent)
	require.True(t, ok)
	assert.Equal(t, []string{"wine club"}, topic.Keywords)
	_, isProduct := cls.Product()
	assert.False(t, isProduct)
}

func TestClassify_Price(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("what wines do you have under $25")
	assert.Equal(t, intent.SubtypePrice, cls.Subtype())
	assert.True(t, cls.AsksPrice())

	cls = svc.Classify("how much is the dry rose")
	assert.Equal(t, "dry-rose", cls.EntityPattern())
	assert.True(t, cls.AsksPrice(), "price flag survives entity match")
}

func TestClassify_ProductTermsFallback(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("what red would you recommend with steak")
	assert.Equal(t, intent.Product, cls.Domain())
	assert.Equal(t, intent.SubtypeGeneral, cls.Subtype())
	assert.False(t, cls.IsSpecificEntity())
}

func TestClassify_NonVintage(t *testing.T) {
	svc := New(nil)

	cls := svc.Classify("is the sparkling rosé non-vintage")
	assert.Equal(t, "sparkling-rose", cls.EntityPattern())
	assert.Equal(t, "NV", cls.PreferredVariant())
}

func TestClassify_Deterministic(t *testing.T) {
	svc := New(nil)
	first := svc.Classify("tell me about rosé").Summary()
	for range 20 {
		assert.Equal(t, first, svc.Classify("tell me about rosé").Summary())
	}
}

func TestService_SetCatalog(t *testing.T) {
	svc := New(nil)
	custom, err := catalog.Parse([]byte(`
entities:
  - pattern: house-red
    name: House Red
    matchers:
      - {kind: exact, phrase: house red}
`))
	require.NoError(t, err)

	svc.SetCatalog(custom)
	assert.Same(t, custom, svc.Catalog())
	assert.Equal(t, "house-red", svc.Classify("house red please").EntityPattern())
	assert.Equal(t, intent.General, svc.Classify("join the wine club").Domain())

	svc.SetCatalog(nil)
	assert.Same(t, custom, svc.Catalog(), "nil catalog is ignored")
}

func TestService_ConcurrentSwap(t *testing.T) {
	svc := New(nil)
	def := catalog.Default()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if i%2 == 0 {
					svc.SetCatalog(def)
				}
				_ = svc.Classify("reserve cabernet franc")
			}
		}()
	}
	wg.Wait()
}
