package assemble

import (
	"strings"

	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
)

// Validation rules, reported for logging and metrics.
const (
	RuleNone            = "none"
	RuleFuzzyAlias      = "fuzzy_alias"
	RuleConfirmedEntity = "confirmed_entity"
	RuleGenericEntity   = "generic_entity"
)

// Validation is the outcome of Validate.
type Validation struct {
	Passages []passage.Passage
	Rule     string
	// Fallback is set when the rule removed every candidate and the unfiltered set was kept.
	Fallback bool
}

// Validate discards candidates that do not belong to the classified entity.
//
// A fuzzy alias in the raw question narrows the set to that alias's entity first. A
// confirmed entity keeps sources containing its pattern, a family question keeps
// passages mentioning one of its terms. When a filter would leave nothing, the
// unfiltered set is returned with Fallback set.
func Validate(
	cat *catalog.Catalog, passages []passage.Passage, cls intent.Classification, raw string,
) Validation {
	if len(passages) == 0 {
		return Validation{Passages: passages, Rule: RuleNone}
	}

	if cat != nil {
		if alias, ok := cat.MatchFuzzyAlias(fold.String(raw)); ok {
			if kept := filterBySource(passages, alias.Pattern); len(kept) > 0 {
				return Validation{Passages: kept, Rule: RuleFuzzyAlias}
			}
		}
	}

	switch {
	case cls.IsConfirmedEntity():
		kept := filterBySource(passages, cls.EntityPattern())
		if len(kept) == 0 {
			return Validation{Passages: passages, Rule: RuleConfirmedEntity, Fallback: true}
		}
		return Validation{Passages: kept, Rule: RuleConfirmedEntity}

	case cls.IsGeneric() && len(cls.EntityTerms()) > 0:
		kept := filterByTerms(passages, cls.EntityTerms())
		if len(kept) == 0 {
			return Validation{Passages: passages, Rule: RuleGenericEntity, Fallback: true}
		}
		return Validation{Passages: kept, Rule: RuleGenericEntity}
	}

	return Validation{Passages: passages, Rule: RuleNone}
}

func filterBySource(passages []passage.Passage, pattern string) []passage.Passage {
	if pattern == "" {
		return nil
	}
	pattern = strings.ToLower(pattern)
	var kept []passage.Passage
	for _, p := range passages {
		if strings.Contains(strings.ToLower(p.SourceID), pattern) {
			kept = append(kept, p)
		}
	}
	return kept
}

func filterByTerms(passages []passage.Passage, terms []string) []passage.Passage {
	var kept []passage.Passage
	for _, p := range passages {
		src := fold.String(p.SourceID)
		content := fold.String(p.Content)
		for _, t := range terms {
			if fold.Contains(src, t) || fold.Contains(content, t) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}
