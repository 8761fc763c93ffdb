package catalog

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
)

func TestMatcher_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		text    string
		want    bool
	}{
		{"regex hit", Matcher{Kind: MatchRegex, Pattern: `\breserve\s+cab`}, "the reserve cab franc", true},
		{"regex miss", Matcher{Kind: MatchRegex, Pattern: `\breserve\s+cab`}, "reserved table", false},
		{"exact hit", Matcher{Kind: MatchExact, Phrase: "Ice Wine"}, "do you sell ice wine", true},
		{"exact word boundary", Matcher{Kind: MatchExact, Phrase: "ice wine"}, "nice wine", false},
		{"proximity inside window", Matcher{Kind: MatchProximity, Terms: []string{"reserve", "franc"}, Window: 4}, "reserve cabernet franc", true},
		{"proximity any order", Matcher{Kind: MatchProximity, Terms: []string{"reserve", "franc"}, Window: 4}, "franc from the reserve", true},
		{"proximity outside window", Matcher{Kind: MatchProximity, Terms: []string{"reserve", "franc"}, Window: 2}, "reserve a table for franc", false},
		{"proximity missing term", Matcher{Kind: MatchProximity, Terms: []string{"reserve", "franc"}, Window: 4}, "reserve a table", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.matcher
			if err := compileMatcher(&m); err != nil {
				t.Fatalf("compile: %v", err)
			}
			folded := fold.String(tc.text)
			if got := m.Match(folded, fold.Words(folded)); got != tc.want {
				t.Errorf("Match(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestCompileMatcher_Errors(t *testing.T) {
	bad := []Matcher{
		{Kind: MatchRegex},
		{Kind: MatchRegex, Pattern: "("},
		{Kind: MatchExact, Phrase: "  "},
		{Kind: MatchProximity, Terms: []string{"one"}},
		{Kind: "fuzzy", Phrase: "x"},
	}
	for i, m := range bad {
		if err := compileMatcher(&m); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestEntity_RegexBeforeProximity(t *testing.T) {
	c := Default()
	e, ok := c.MatchEntity(fold.String("2022 Reserve Cabernet Franc"))
	if !ok {
		t.Fatal("expected a match")
	}
	if e.Pattern != "reserve-cabernet-franc" {
		t.Errorf("unexpected entity %q", e.Pattern)
	}
}

func TestDefault_ConfirmedEntitiesIgnoreCaseAndSpacing(t *testing.T) {
	c := Default()
	tests := []struct {
		text, want string
	}{
		{"RESERVE   cabernet FRANC", "reserve-cabernet-franc"},
		{"reserve cab", "reserve-cabernet-franc"},
		{"Sparkling Rosé", "sparkling-rose"},
		{"rosé of pinot noir", "rose-of-pinot-noir"},
		{"dry rose", "dry-rose"},
		{"late harvest reisling", "late-harvest-riesling"},
		{"Do you have icewine?", "vidal-ice-wine"},
		{"naked chard", "unoaked-chardonnay"},
		{"bordeaux blend", "meritage"},
	}
	for _, tc := range tests {
		e, ok := c.MatchEntity(fold.String(tc.text))
		if !ok {
			t.Errorf("%q: no entity", tc.text)
			continue
		}
		if e.Pattern != tc.want {
			t.Errorf("%q: got %q, want %q", tc.text, e.Pattern, tc.want)
		}
	}
}

func TestDefault_BareFamilyIsNotAnEntity(t *testing.T) {
	c := Default()
	if e, ok := c.MatchEntity(fold.String("tell me about rosé")); ok {
		t.Errorf("unexpected entity %q", e.Pattern)
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c := Default()
	e, ok := c.Entity("dry-rose")
	if !ok || e.Family != "rose" {
		t.Fatalf("unexpected entity %+v %v", e, ok)
	}
	ref := e.Ref()
	if ref.Pattern != "dry-rose" || ref.Name != "Dry Rosé" {
		t.Errorf("unexpected ref %+v", ref)
	}
	if _, ok := c.Entity("missing"); ok {
		t.Error("unknown pattern must not resolve")
	}
	f, ok := c.Family("riesling")
	if !ok || len(f.Terms) == 0 {
		t.Fatalf("unexpected family %+v %v", f, ok)
	}
	if got := c.ContentTypesFor(intent.Membership); len(got) == 0 {
		t.Error("membership content types expected")
	}
	if c.InstructionFor(intent.General) != "" {
		t.Error("general has no instruction")
	}
}

func TestCatalog_MatchFollowUp(t *testing.T) {
	c := Default()

	e, ok := c.MatchFollowUp(fold.String("The dry one please"), "riesling")
	if !ok || e.Pattern != "dry-riesling" {
		t.Errorf("family scope ignored: %+v %v", e, ok)
	}
	e, ok = c.MatchFollowUp(fold.String("the dry one"), "rose")
	if !ok || e.Pattern != "dry-rose" {
		t.Errorf("unexpected %+v %v", e, ok)
	}
	e, ok = c.MatchFollowUp(fold.String("the reserve one"), "")
	if !ok || e.Pattern != "reserve-cabernet-franc" {
		t.Errorf("unscoped alias not applied: %+v %v", e, ok)
	}
	if _, ok := c.MatchFollowUp(fold.String("the dry one"), ""); ok {
		t.Error("scoped alias must not apply without its family")
	}
}

func TestCatalog_MatchFuzzyAlias(t *testing.T) {
	c := Default()
	a, ok := c.MatchFuzzyAlias(fold.String("Any DRY Reisling left?"))
	if !ok || a.Pattern != "dry-riesling" {
		t.Errorf("unexpected %+v %v", a, ok)
	}
	if _, ok := c.MatchFuzzyAlias("hello"); ok {
		t.Error("no alias expected")
	}
}

func TestCatalog_MatchPrice(t *testing.T) {
	c := Default()
	for _, q := range []string{"how much is the dry rose", "wines under $30", "what does it cost", "prices"} {
		if !c.MatchPrice(fold.String(q)) {
			t.Errorf("%q should ask price", q)
		}
	}
	if c.MatchPrice(fold.String("tell me about riesling")) {
		t.Error("no price expected")
	}
}

func TestRule_Match(t *testing.T) {
	c := Default()
	var membership Rule
	for _, r := range c.Rules {
		if r.Domain == intent.Membership {
			membership = r
		}
	}
	if term, ok := membership.Match(fold.String("How do I join the Wine Club?")); !ok || term == "" {
		t.Errorf("unexpected %q %v", term, ok)
	}
	if _, ok := membership.Match(fold.String("remember me")); ok {
		t.Error("must match at word start only")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
families:
  - slug: rose
    name: Rosé
    terms: [rose]
entities:
  - pattern: dry-rose
    name: Dry Rosé
    family: rose
    terms: [dry, rose]
    matchers:
      - kind: regex
        pattern: '\bdry\s+rose\b'
      - kind: proximity
        terms: [dry, rose]
rules:
  - domain: membership
    terms: [wine club]
fuzzy_aliases:
  - alias: Dry Rosay
    pattern: dry-rose
follow_ups:
  - family: rose
    phrases: [the dry one]
    pattern: dry-rose
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e, ok := c.MatchEntity(fold.String("dry rosay"))
	if !ok || e.Pattern != "dry-rose" {
		t.Errorf("fuzzy alias not compiled into entity: %+v %v", e, ok)
	}
	if got := c.Entities[0].Matchers[1].Window; got != 4 {
		t.Errorf("default proximity window = %d, want 4", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", `{}`},
		{"unknown family", `
entities:
  - pattern: x
    family: nope
    matchers: [{kind: exact, phrase: x}]`},
		{"duplicate pattern", `
entities:
  - pattern: x
    matchers: [{kind: exact, phrase: x}]
  - pattern: x
    matchers: [{kind: exact, phrase: y}]`},
		{"alias to unknown entity", `
entities:
  - pattern: x
    matchers: [{kind: exact, phrase: x}]
fuzzy_aliases:
  - {alias: y, pattern: z}`},
		{"bad rule domain", `
rules:
  - domain: weather
    terms: [rain]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/catalog.yaml"); err == nil {
		t.Error("expected error")
	}
}
