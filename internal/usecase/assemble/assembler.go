// Package assemble turns retrieved candidates into the context bundle for one question:
// validation, scoring, variant grouping, document selection and markup cleaning.
package assemble

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
	"github.com/kailas-cloud/sommelier/internal/logger"
	"github.com/kailas-cloud/sommelier/internal/metrics"
)

// Assembler runs the validate, score, group and select chain.
type Assembler struct {
	catalogs CatalogProvider
	limits   Limits
}

// New creates an assembler.
func New(catalogs CatalogProvider, limits Limits) *Assembler {
	return &Assembler{catalogs: catalogs, limits: limits.withDefaults()}
}

// Assemble never fails: any panic in the chain yields an empty bundle, which callers
// treat as insufficient knowledge.
func (a *Assembler) Assemble(
	ctx context.Context, q query.Query, cls intent.Classification, candidates []passage.Passage,
) (b bundle.Bundle) {
	log := logger.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error("context assembly panicked",
				zap.String("panic", fmt.Sprint(r)),
				zap.String("domain", string(cls.Domain())),
			)
			metrics.AssemblyFailuresTotal.Inc()
			b = bundle.Empty(q, cls)
		}
	}()

	if len(candidates) == 0 {
		return bundle.Empty(q, cls)
	}
	cat := a.catalogs.Catalog()

	v := Validate(cat, candidates, cls, q.Raw())
	if v.Fallback {
		log.Warn("validation_fallback",
			zap.String("rule", v.Rule),
			zap.String("entity_pattern", cls.EntityPattern()),
			zap.Strings("entity_terms", cls.EntityTerms()),
			zap.Int("candidates", len(candidates)),
		)
		metrics.ValidationFallbacksTotal.WithLabelValues(v.Rule).Inc()
	}

	scored := Score(cat, v.Passages, q.Raw(), cls)
	grouped := Group(cat, scored, cls)
	docs := Select(grouped, scored, a.limits)

	cleaned := make([]passage.Passage, 0, len(docs))
	for _, d := range docs {
		cleaned = append(cleaned, d.WithContent(CleanMarkup(d.Content)))
	}

	log.Debug("context assembled",
		zap.Int("candidates", len(candidates)),
		zap.Int("validated", len(v.Passages)),
		zap.Int("scored", len(scored)),
		zap.Int("documents", len(cleaned)),
		zap.Int("siblings", len(grouped.Siblings)),
		zap.Bool("multiple_entities", grouped.MultipleEntitiesDetected),
	)

	return bundle.Bundle{
		Query:                    q,
		Classification:           cls,
		Documents:                cleaned,
		Siblings:                 grouped.Siblings,
		MultipleEntitiesDetected: grouped.MultipleEntitiesDetected,
		Variants:                 grouped.Variants,
	}
}
