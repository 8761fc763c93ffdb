// Package synthesis wraps the answer synthesizer with a token budget and a request
// rate limit.
package synthesis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/metrics"
)

// BudgetChecker is the budget contract the synthesizer needs.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedSynthesizer enforces budget and rate limit around an inner synthesizer.
// Request, duration and token metrics are recorded by the transport; this layer owns
// budget metrics.
type InstrumentedSynthesizer struct {
	inner   domain.Synthesizer
	model   string
	budget  BudgetChecker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewInstrumentedSynthesizer wraps inner. A nil budget or limiter disables that check.
func NewInstrumentedSynthesizer(
	inner domain.Synthesizer, model string,
	budget BudgetChecker, limiter *rate.Limiter, logger *zap.Logger,
) *InstrumentedSynthesizer {
	return &InstrumentedSynthesizer{
		inner:   inner,
		model:   model,
		budget:  budget,
		limiter: limiter,
		logger:  logger,
	}
}

// NewLimiter builds a limiter for rps requests per second; rps <= 0 disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Synthesize waits for the rate limiter, checks the budget, delegates and records usage.
func (s *InstrumentedSynthesizer) Synthesize(
	ctx context.Context, prompt domain.Prompt,
) (domain.SynthesisResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.SynthesisResult{}, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
	}

	if s.budget != nil {
		if err := s.budget.Check(ctx); err != nil {
			s.logger.Error("Synthesis budget exceeded", zap.String("model", s.model), zap.Error(err))
			return domain.SynthesisResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := s.inner.Synthesize(ctx, prompt)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("Synthesis request failed",
			zap.String("model", s.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.SynthesisResult{}, fmt.Errorf("synthesize: %w", err)
	}

	if s.budget != nil && result.TotalTokens > 0 {
		s.budget.Record(int64(result.TotalTokens))
		g := metrics.SynthesisBudgetTokensRemaining
		g.WithLabelValues("daily").Set(float64(s.budget.RemainingDaily()))
		g.WithLabelValues("monthly").Set(float64(s.budget.RemainingMonthly()))
	}

	s.logger.Debug("Synthesis request completed",
		zap.String("model", s.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}
