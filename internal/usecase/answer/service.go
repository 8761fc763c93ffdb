// Package answer orchestrates one question end to end: follow-up resolution, cache
// lookup, classification, retrieval, context assembly, domain handlers and synthesis.
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
	"github.com/kailas-cloud/sommelier/internal/logger"
	"github.com/kailas-cloud/sommelier/internal/metrics"
	"github.com/kailas-cloud/sommelier/internal/usecase/respcache"
)

// Default timeouts.
const (
	DefaultRetrievalTimeout = 5 * time.Second
	DefaultSynthesisTimeout = 30 * time.Second
)

// Config tunes the pipeline.
type Config struct {
	RetrievalTimeout      time.Duration
	SynthesisTimeout      time.Duration
	KTable                KTable
	InsufficientKnowledge string
	Apology               string
	// Backend labels retrieval metrics ("valkey", "redis", "pgvector").
	Backend string
}

func (c Config) withDefaults() Config {
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = DefaultRetrievalTimeout
	}
	if c.SynthesisTimeout <= 0 {
		c.SynthesisTimeout = DefaultSynthesisTimeout
	}
	if c.KTable == nil {
		c.KTable = DefaultKTable()
	}
	if c.InsufficientKnowledge == "" {
		c.InsufficientKnowledge = DefaultInsufficientKnowledge
	}
	if c.Apology == "" {
		c.Apology = DefaultApology
	}
	if c.Backend == "" {
		c.Backend = "unknown"
	}
	return c
}

// Deps are the collaborators of the pipeline. Remote and Handlers are optional.
type Deps struct {
	Classifier  Classifier
	Retriever   Retriever
	Assembler   ContextAssembler
	Tracker     ConversationTracker
	Cache       *respcache.Cache[Response]
	Remote      RemoteCache
	Synthesizer domain.Synthesizer
	Handlers    Handlers
}

// Service answers questions. Safe for concurrent use.
type Service struct {
	deps   Deps
	cfg    Config
	flight singleflight.Group
	tracer trace.Tracer
}

// New creates the pipeline service.
func New(deps Deps, cfg Config) (*Service, error) {
	switch {
	case deps.Classifier == nil:
		return nil, errors.New("answer: classifier is required")
	case deps.Retriever == nil:
		return nil, errors.New("answer: retriever is required")
	case deps.Assembler == nil:
		return nil, errors.New("answer: assembler is required")
	case deps.Tracker == nil:
		return nil, errors.New("answer: conversation tracker is required")
	case deps.Cache == nil:
		return nil, errors.New("answer: response cache is required")
	case deps.Synthesizer == nil:
		return nil, errors.New("answer: synthesizer is required")
	}
	if deps.Handlers == nil {
		deps.Handlers = Handlers{}
	}
	return &Service{
		deps:   deps,
		cfg:    cfg.withDefaults(),
		tracer: otel.Tracer("github.com/kailas-cloud/sommelier/internal/usecase/answer"),
	}, nil
}

type flightResult struct {
	resp    Response
	bundle  bundle.Bundle
	outcome string
	// cacheable is false for degraded and date-relative answers.
	cacheable bool
}

// Ask answers one question. The only error is an invalid question; every downstream
// failure degrades to a fallback response.
func (s *Service) Ask(ctx context.Context, in AskInput) (Response, error) {
	q, err := query.New(in.Query, in.SessionID, in.RequestID)
	if err != nil {
		return Response{}, err //nolint:wrapcheck // sentinel already wrapped
	}

	ctx, span := s.tracer.Start(ctx, "answer.Ask", trace.WithAttributes(
		attribute.String("request_id", q.RequestID()),
		attribute.Bool("session", q.SessionID() != ""),
	))
	defer span.End()

	ctx = logger.With(ctx, zap.String("request_id", q.RequestID()))
	start := time.Now()

	var previous string
	if turn, ok := s.deps.Tracker.PreviousTurn(q.SessionID()); ok {
		previous = turn.Query
	}
	key := respcache.Key(previous, q.Normalized())

	// Resolution must happen before the lookup so a cached follow-up still moves this
	// session's clarification to Resolved.
	override, followUp := s.deps.Tracker.ResolveFollowUp(q)

	if resp, ok := s.lookup(ctx, key); ok {
		recorded := intent.Default()
		if followUp {
			recorded = override
		}
		s.deps.Tracker.RecordResponse(q, resp.Answer, bundle.Empty(q, recorded))
		resp.Cached = true
		resp.RequestID = q.RequestID()
		s.observe(resp.Classification.Domain, OutcomeCached, start)
		span.SetAttributes(attribute.Bool("cached", true), attribute.Bool("follow_up", followUp))
		return resp, nil
	}

	flightKey := key
	if followUp {
		flightKey += "#" + override.EntityPattern() + "@" + override.PreferredVariant()
	}

	// The shared call outlives any single caller; stage timeouts still bound it.
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := s.flight.Do(flightKey, func() (any, error) {
		var cls intent.Classification
		if followUp {
			cls = override
		} else {
			cls = s.deps.Classifier.Classify(q.Raw())
		}
		res := s.run(flightCtx, q, cls)
		if res.cacheable {
			s.store(flightCtx, key, res.resp)
		}
		s.observe(cls.Domain(), res.outcome, start)
		return res, nil
	})
	res := v.(flightResult)

	resp := res.resp.clone()
	resp.RequestID = q.RequestID()
	s.deps.Tracker.RecordResponse(q, resp.Answer, res.bundle)

	span.SetAttributes(
		attribute.String("domain", string(resp.Classification.Domain)),
		attribute.String("outcome", res.outcome),
		attribute.Bool("follow_up", resp.FollowUp),
		attribute.Bool("clarification", resp.Clarification),
	)
	return resp, nil
}

// run executes the uncached part of the pipeline. Only answered and handled
// outcomes are cacheable.
func (s *Service) run(ctx context.Context, q query.Query, cls intent.Classification) flightResult {
	log := logger.FromContext(ctx)

	candidates := s.retrieve(ctx, q, cls)
	b := s.deps.Assembler.Assemble(ctx, q, cls, candidates)

	base := Response{
		Classification: cls.Summary(),
		FollowUp:       cls.IsFollowUp(),
		Sources:        []string{},
	}
	result := func(outcome string) flightResult {
		return flightResult{resp: base, bundle: b, outcome: outcome}
	}

	hr, err := s.handle(ctx, q, cls, b)
	if err != nil {
		log.Error("Domain handler failed, using default path",
			zap.String("domain", string(cls.Domain())), zap.Error(err))
		metrics.HandlerFailuresTotal.WithLabelValues(string(cls.Domain())).Inc()
		hr = HandlerResult{}
	}
	if !hr.Deferred() {
		base.Answer = hr.Answer
		base.Sources = append(base.Sources, hr.Sources...)
		base.Clarification = hr.Clarification || s.deps.Tracker.IsClarification(hr.Answer)
		if base.Clarification {
			return result(OutcomeClarification)
		}
		res := result(OutcomeHandled)
		res.cacheable = !hr.Volatile
		return res
	}

	if !b.HasDocuments() {
		base.Answer = s.cfg.InsufficientKnowledge
		return result(OutcomeInsufficient)
	}

	text, err := s.synthesize(ctx, buildPrompt(b, hr.Instruction))
	if err != nil {
		log.Error("Answer synthesis failed", zap.Error(err))
		base.Answer = s.cfg.Apology
		return result(OutcomeApology)
	}
	base.Answer = text
	base.Sources = b.Sources()
	base.Clarification = s.deps.Tracker.IsClarification(text)
	if base.Clarification {
		return result(OutcomeClarification)
	}
	res := result(OutcomeAnswered)
	res.cacheable = true
	return res
}

// retrieve never fails: errors and timeouts yield zero candidates.
func (s *Service) retrieve(ctx context.Context, q query.Query, cls intent.Classification) []passage.Passage {
	text := q.Raw()
	if cls.IsFollowUp() && cls.EntityName() != "" {
		text = cls.EntityName() + " " + q.Raw()
	}
	k := s.cfg.KTable.K(cls)

	ctx, span := s.tracer.Start(ctx, "answer.Retrieve", trace.WithAttributes(
		attribute.Int("k", k),
		attribute.String("backend", s.cfg.Backend),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RetrievalTimeout)
	defer cancel()

	start := time.Now()
	passages, err := s.deps.Retriever.Search(ctx, text, k)
	metrics.RetrievalDuration.WithLabelValues(s.cfg.Backend).Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.RetrievalErrorsTotal.WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		logger.FromContext(ctx).Warn("Retrieval failed, continuing without candidates",
			zap.String("reason", reason), zap.Int("k", k), zap.Error(err))
		return nil
	}
	span.SetAttributes(attribute.Int("candidates", len(passages)))
	return passages
}

// handle runs the domain handler and converts a panic into an error.
func (s *Service) handle(
	ctx context.Context, q query.Query, cls intent.Classification, b bundle.Bundle,
) (res HandlerResult, err error) {
	h, ok := s.deps.Handlers[cls.Domain()]
	if !ok {
		return HandlerResult{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &domain.HandlerError{Domain: string(cls.Domain()), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res, err = h.Handle(ctx, q, cls, b)
	if err != nil {
		return HandlerResult{}, &domain.HandlerError{Domain: string(cls.Domain()), Err: err}
	}
	return res, nil
}

func (s *Service) synthesize(ctx context.Context, prompt domain.Prompt) (string, error) {
	ctx, span := s.tracer.Start(ctx, "answer.Synthesize")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SynthesisTimeout)
	defer cancel()

	res, err := s.deps.Synthesizer.Synthesize(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "synthesis failed")
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}
	if res.Text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrSynthesis)
	}
	span.SetAttributes(attribute.Int("total_tokens", res.TotalTokens))
	return res.Text, nil
}

func (s *Service) lookup(ctx context.Context, key string) (Response, bool) {
	if resp, ok := s.deps.Cache.Get(key); ok {
		metrics.ResponseCacheTotal.WithLabelValues("local", "hit").Inc()
		return resp.clone(), true
	}
	metrics.ResponseCacheTotal.WithLabelValues("local", "miss").Inc()

	if s.deps.Remote == nil {
		return Response{}, false
	}
	resp, ok, err := s.deps.Remote.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn("Remote cache lookup failed", zap.Error(err))
		return Response{}, false
	}
	if !ok {
		metrics.ResponseCacheTotal.WithLabelValues("remote", "miss").Inc()
		return Response{}, false
	}
	metrics.ResponseCacheTotal.WithLabelValues("remote", "hit").Inc()
	s.deps.Cache.Set(key, resp)
	return resp.clone(), true
}

func (s *Service) store(ctx context.Context, key string, resp Response) {
	resp.Cached = false
	resp.RequestID = ""
	s.deps.Cache.Set(key, resp)
	if s.deps.Remote == nil {
		return
	}
	if err := s.deps.Remote.Set(ctx, key, resp); err != nil {
		logger.FromContext(ctx).Warn("Remote cache store failed", zap.Error(err))
	}
}

func (s *Service) observe(d intent.Domain, outcome string, start time.Time) {
	metrics.AskRequestsTotal.WithLabelValues(string(d), outcome).Inc()
	metrics.AskDuration.WithLabelValues(string(d)).Observe(time.Since(start).Seconds())
}
