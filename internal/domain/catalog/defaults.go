package catalog

import "github.com/kailas-cloud/sommelier/internal/domain/intent"

// Default returns the built-in vineyard catalog, compiled. Entities are listed from the
// most to the least specific: the first entity that matches wins.
func Default() *Catalog {
	c := &Catalog{
		Families: []Family{
			{Slug: "rose", Name: "Rosé", Terms: []string{"rose", "blush", "rosado"},
				Qualifiers: []string{"dry", "sparkling", "bubbly", "pinot"}},
			{Slug: "riesling", Name: "Riesling", Terms: []string{"riesling", "reisling"},
				Qualifiers: []string{"dry", "late harvest", "sweet", "off dry"}},
			{Slug: "chardonnay", Name: "Chardonnay", Terms: []string{"chardonnay", "chardonay", "chard"},
				Qualifiers: []string{"unoaked", "oaked", "barrel", "naked"}},
			{Slug: "cabernet-franc", Name: "Cabernet Franc", Terms: []string{"cabernet franc", "cab franc"},
				Qualifiers: []string{"reserve", "estate"}},
			{Slug: "red-blend", Name: "Red Blend", Terms: []string{"red blend", "meritage"}},
			{Slug: "dessert", Name: "Dessert Wine", Terms: []string{"dessert wine", "ice wine", "icewine", "sweet wine"}},
			{Slug: "sparkling", Name: "Sparkling", Terms: []string{"sparkling", "bubbly", "brut"},
				Qualifiers: []string{"rose", "blanc de blancs"}},
		},
		Entities: []Entity{
			{
				Pattern: "reserve-cabernet-franc", Name: "Reserve Cabernet Franc", Family: "cabernet-franc",
				Terms: []string{"reserve", "cabernet", "franc"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\breserve\s+cab(ernet)?\s+franc\b`},
					{Kind: MatchExact, Phrase: "cab franc reserve"},
					{Kind: MatchProximity, Terms: []string{"reserve", "franc"}, Window: 4},
				},
			},
			{
				Pattern: "sparkling-rose", Name: "Sparkling Rosé", Family: "rose",
				Terms: []string{"sparkling", "rose"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\b(sparkling|bubbly)\s+rose\b`},
					{Kind: MatchExact, Phrase: "rose bubbly"},
					{Kind: MatchProximity, Terms: []string{"sparkling", "rose"}, Window: 3},
				},
			},
			{
				Pattern: "rose-of-pinot-noir", Name: "Rosé of Pinot Noir", Family: "rose",
				Terms: []string{"rose", "pinot"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\brose\s+of\s+pinot(\s+noir)?\b`},
					{Kind: MatchProximity, Terms: []string{"pinot", "rose"}, Window: 3},
				},
			},
			{
				Pattern: "dry-rose", Name: "Dry Rosé", Family: "rose",
				Terms: []string{"dry", "rose"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\bdry\s+rose\b`},
					{Kind: MatchProximity, Terms: []string{"dry", "rose"}, Window: 3},
				},
			},
			{
				Pattern: "late-harvest-riesling", Name: "Late Harvest Riesling", Family: "riesling",
				Terms: []string{"late", "harvest", "riesling"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\blate\s+harvest\s+r(ie|ei)sling\b`},
					{Kind: MatchExact, Phrase: "late harvest"},
				},
			},
			{
				Pattern: "dry-riesling", Name: "Dry Riesling", Family: "riesling",
				Terms: []string{"dry", "riesling"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\bdry\s+r(ie|ei)sling\b`},
					{Kind: MatchProximity, Terms: []string{"dry", "riesling"}, Window: 3},
				},
			},
			{
				Pattern: "unoaked-chardonnay", Name: "Unoaked Chardonnay", Family: "chardonnay",
				Terms: []string{"unoaked", "chardonnay"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\b(un\s?oaked|naked)\s+chard(onn?ay)?\b`},
				},
			},
			{
				Pattern: "barrel-fermented-chardonnay", Name: "Barrel Fermented Chardonnay", Family: "chardonnay",
				Terms: []string{"barrel", "chardonnay"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\bbarrel\s+(fermented\s+)?chard(onn?ay)?\b`},
					{Kind: MatchProximity, Terms: []string{"barrel", "chard"}, Window: 4},
				},
			},
			{
				Pattern: "cabernet-franc", Name: "Estate Cabernet Franc", Family: "cabernet-franc",
				Terms: []string{"estate", "cabernet", "franc"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\bestate\s+cab(ernet)?\s+franc\b`},
				},
			},
			{
				Pattern: "vidal-ice-wine", Name: "Vidal Ice Wine", Family: "dessert",
				Terms: []string{"vidal", "ice", "wine"},
				Matchers: []Matcher{
					{Kind: MatchRegex, Pattern: `\bvidal\b`},
					{Kind: MatchExact, Phrase: "ice wine"},
					{Kind: MatchExact, Phrase: "icewine"},
				},
			},
			{
				Pattern: "meritage", Name: "Meritage Red Blend", Family: "red-blend",
				Terms: []string{"meritage"},
				Matchers: []Matcher{
					{Kind: MatchExact, Phrase: "meritage"},
				},
			},
		},
		Rules: []Rule{
			{Domain: intent.BusinessHours, Terms: []string{
				"hours", "what time", "are you open", "open today", "open tomorrow", "open on",
				"opening time", "closing time", "close today", "closed on", "when do you open",
				"when do you close", "when are you open",
			}},
			{Domain: intent.Membership, Terms: []string{
				"wine club", "club membership", "member", "join the club", "club shipment",
				"club release", "cellar club", "shipment",
			}},
			{Domain: intent.Loyalty, Terms: []string{
				"loyalty", "reward", "points", "redeem", "referral",
			}},
			{Domain: intent.Production, Terms: []string{
				"winemaking", "winemaker", "ferment", "barrel aging", "aged in", "oak barrel",
				"harvest", "crush", "bottling", "yeast", "grapes grown", "vineyard practices",
			}},
			{Domain: intent.Sustainability, Terms: []string{
				"sustainab", "organic", "biodynamic", "solar", "eco friendly", "environment",
				"pesticide", "cover crop", "carbon",
			}},
			{Domain: intent.Visiting, Terms: []string{
				"visit", "tasting room", "tasting fee", "tour", "direction", "parking",
				"reservation", "book a tasting", "picnic", "dog", "pet friendly", "wheelchair",
				"private event", "wedding", "where are you located", "address",
			}},
			{Domain: intent.Merchandise, Terms: []string{
				"merchandise", "merch", "gift card", "gift shop", "glassware", "wine glass",
				"t shirt", "apparel", "corkscrew", "opener", "gift box",
			}},
		},
		Styles: []string{
			"sparkling", "bubbly", "dry", "off dry", "sweet", "semi sweet", "late harvest",
			"reserve", "estate", "unoaked", "oaked", "barrel", "brut", "still",
		},
		PricePattern: `(\$\s?\d+|\bprice[sd]?\b|\bcosts?\b|\bhow much\b|\bcheap|\bexpensive\b|\bunder \$?\d+|\bbudget\b|\bafford)`,
		ProductTerms: []string{
			"wine", "bottle", "vintage", "varietal", "red", "white", "sweet", "dry", "case",
			"pairing", "pair with", "tasting notes", "recommend",
		},
		FuzzyAliases: []FuzzyAlias{
			{Alias: "reserve cab", Pattern: "reserve-cabernet-franc"},
			{Alias: "cab franc reserve", Pattern: "reserve-cabernet-franc"},
			{Alias: "late harvest reisling", Pattern: "late-harvest-riesling"},
			{Alias: "dry reisling", Pattern: "dry-riesling"},
			{Alias: "icewine", Pattern: "vidal-ice-wine"},
			{Alias: "ice wine", Pattern: "vidal-ice-wine"},
			{Alias: "rose bubbly", Pattern: "sparkling-rose"},
			{Alias: "sparkling rosay", Pattern: "sparkling-rose"},
			{Alias: "bordeaux blend", Pattern: "meritage"},
			{Alias: "naked chard", Pattern: "unoaked-chardonnay"},
		},
		FollowUps: []FollowUpAlias{
			{Family: "rose", Phrases: []string{"the dry one", "dry one", "the still one"}, Pattern: "dry-rose"},
			{Family: "rose", Phrases: []string{"the sparkling one", "the bubbly one", "bubbly", "sparkling"}, Pattern: "sparkling-rose"},
			{Family: "rose", Phrases: []string{"the pinot one", "pinot"}, Pattern: "rose-of-pinot-noir"},
			{Family: "riesling", Phrases: []string{"the dry one", "dry one"}, Pattern: "dry-riesling"},
			{Family: "riesling", Phrases: []string{"the sweet one", "the late harvest one", "late harvest"}, Pattern: "late-harvest-riesling"},
			{Family: "chardonnay", Phrases: []string{"the unoaked one", "unoaked"}, Pattern: "unoaked-chardonnay"},
			{Family: "chardonnay", Phrases: []string{"the barrel one", "the oaked one", "barrel"}, Pattern: "barrel-fermented-chardonnay"},
			{Family: "cabernet-franc", Phrases: []string{"the estate one", "estate"}, Pattern: "cabernet-franc"},
			{Phrases: []string{"the reserve one", "reserve"}, Pattern: "reserve-cabernet-franc"},
			{Phrases: []string{"the ice wine", "ice wine"}, Pattern: "vidal-ice-wine"},
		},
		ContentTypes: map[intent.Domain][]string{
			intent.Product:        {"product", "wine"},
			intent.Membership:     {"membership", "club"},
			intent.Loyalty:        {"loyalty", "rewards"},
			intent.Visiting:       {"visiting", "events", "faq"},
			intent.Production:     {"production", "winemaking"},
			intent.Sustainability: {"sustainability"},
			intent.Merchandise:    {"merchandise"},
			intent.BusinessHours:  {"hours"},
		},
		Weekdays: []string{
			"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
			"today", "tomorrow",
		},
		Instructions: map[intent.Domain]string{
			intent.Product:        "Describe the wine using the tasting notes and availability in the context.",
			intent.Membership:     "Explain club tiers, shipments and benefits exactly as listed.",
			intent.Loyalty:        "Explain how rewards are earned and redeemed.",
			intent.Visiting:       "Give practical visiting details such as reservations, fees and directions.",
			intent.Production:     "Describe the winemaking process in plain language.",
			intent.Sustainability: "Describe the vineyard's sustainability practices.",
			intent.Merchandise:    "List the relevant merchandise and where it can be bought.",
		},
	}
	if err := c.Compile(); err != nil {
		panic("catalog: default catalog is invalid: " + err.Error())
	}
	return c
}
