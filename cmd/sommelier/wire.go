package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/config"
	dbRedis "github.com/kailas-cloud/sommelier/internal/db/redis"
	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/metrics"
	"github.com/kailas-cloud/sommelier/internal/repository/answercache"
	budgetrepo "github.com/kailas-cloud/sommelier/internal/repository/budget"
	"github.com/kailas-cloud/sommelier/internal/repository/catalogfile"
	"github.com/kailas-cloud/sommelier/internal/repository/embcache"
	passagerepo "github.com/kailas-cloud/sommelier/internal/repository/passage"
	"github.com/kailas-cloud/sommelier/internal/repository/pgpassage"
	chiTransport "github.com/kailas-cloud/sommelier/internal/transport/chi"
	openaiProvider "github.com/kailas-cloud/sommelier/internal/transport/openai"
	"github.com/kailas-cloud/sommelier/internal/usecase/answer"
	"github.com/kailas-cloud/sommelier/internal/usecase/assemble"
	"github.com/kailas-cloud/sommelier/internal/usecase/classify"
	"github.com/kailas-cloud/sommelier/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/sommelier/internal/usecase/health"
	"github.com/kailas-cloud/sommelier/internal/usecase/respcache"
	"github.com/kailas-cloud/sommelier/internal/usecase/synthesis"
)

// app is the wired service. Close releases the connections it owns.
type app struct {
	handler http.Handler
	watcher *catalogfile.Watcher // nil unless catalog.watch is set
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp is the composition root.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	metrics.RegisterPipelineMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Store.Addrs,
		Username: cfg.Store.Username,
		Password: cfg.Store.Password,
		DB:       cfg.Store.DB,
		Flavor:   dbRedis.Flavor(cfg.Store.Driver),
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	if err := store.WaitForReady(ctx, cfg.Store.ReadyTimeout()); err != nil {
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	logger.Info("Connected to store", zap.String("driver", cfg.Store.Driver))

	// Catalog
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	classifier := classify.New(cat)
	if cfg.Catalog.Path != "" && cfg.Catalog.Watch {
		a.watcher = catalogfile.NewWatcher(cfg.Catalog.Path, classifier, 0, logger)
	}

	// Query embedder chain: OpenAI -> Cached -> Instruction
	embedder := buildEmbedder(cfg.Embedding, store, logger)

	// Retriever
	var (
		retriever answer.Retriever
		backend   string
		dbPinger  healthuc.Pinger = store
	)
	switch cfg.Retriever.Driver {
	case "pgvector":
		pool, err := pgpassage.Open(ctx, cfg.Retriever.Postgres.DSN, pgpassage.PoolConfig{
			MaxConns: cfg.Retriever.Postgres.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		retriever = pgpassage.New(pool, embedder, cfg.Retriever.Postgres.Table)
		backend = "pgvector"
		dbPinger = pool
	default:
		repo := passagerepo.New(store, embedder, cfg.Retriever.Hybrid)
		if cfg.Retriever.EnsureIndex {
			if err := repo.EnsureIndex(ctx, cfg.Embedding.Dimensions); err != nil {
				return nil, fmt.Errorf("ensure passage index: %w", err)
			}
		}
		retriever = repo
		backend = cfg.Store.Driver
	}
	logger.Info("Retriever ready",
		zap.String("backend", backend),
		zap.Bool("hybrid", cfg.Retriever.Hybrid && backend != "pgvector"),
	)

	// Synthesizer chain: OpenAI -> Instrumented (rate limit + budget + metrics)
	base := openaiProvider.NewSynthesizer(&openaiProvider.SynthesizerConfig{
		Config: openaiProvider.Config{
			APIKey:  cfg.Synthesis.Provider.APIKey,
			BaseURL: cfg.Synthesis.Provider.BaseURL,
			Model:   cfg.Synthesis.Model,
			Logger:  logger,
		},
		MaxTokens:   cfg.Synthesis.MaxTokens,
		Temperature: cfg.Synthesis.Temperature,
	})

	budget := buildBudget(ctx, cfg.Synthesis, store, logger)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker synthesis.BudgetChecker
	var usage interface{ Usage() synthesis.Usage }
	if budget != nil {
		budgetChecker = budget
		usage = budget
	}
	synth := synthesis.NewInstrumentedSynthesizer(
		base, cfg.Synthesis.Model, budgetChecker,
		synthesis.NewLimiter(cfg.Synthesis.RateLimitRPS, cfg.Synthesis.RateLimitBurst), logger,
	)

	tracker, err := conversation.NewTracker(classifier, conversation.Options{
		MaxSessions: cfg.Conversation.MaxSessions,
		SessionTTL:  cfg.Conversation.SessionTTL(),
		Markers:     cfg.Conversation.Markers,
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation tracker: %w", err)
	}

	var remote answer.RemoteCache
	if cfg.Cache.Remote {
		remote = answercache.New(store, cfg.Cache.TTL())
	}

	answers, err := answer.New(answer.Deps{
		Classifier: classifier,
		Retriever:  retriever,
		Assembler: assemble.New(classifier, assemble.Limits{
			MaxDocuments:             cfg.Pipeline.MaxDocuments,
			MaxDisambiguationOptions: cfg.Pipeline.MaxDisambiguationOptions,
		}),
		Tracker:     tracker,
		Cache:       respcache.New[answer.Response](cfg.Cache.TTL(), cfg.Cache.MaxEntries),
		Remote:      remote,
		Synthesizer: synth,
		Handlers:    answer.DefaultHandlers(classifier, scheduleFromConfig(cfg.Hours)),
	}, answer.Config{
		RetrievalTimeout:      cfg.Pipeline.RetrievalTimeout(),
		SynthesisTimeout:      cfg.Synthesis.Timeout(),
		KTable:                answer.DefaultKTable().Merge(cfg.Pipeline.K),
		InsufficientKnowledge: cfg.Pipeline.InsufficientKnowledge,
		Apology:               cfg.Pipeline.Apology,
		Backend:               backend,
	})
	if err != nil {
		return nil, fmt.Errorf("create answer service: %w", err)
	}

	health := healthuc.New(healthuc.DefaultTimeout,
		healthuc.Component{Name: "database", Checker: healthuc.PingChecker(dbPinger), Critical: true},
		healthuc.Component{Name: "embedding", Checker: embeddingHealthChecker{embedder}},
		healthuc.Component{Name: "synthesis", Checker: base},
	)

	server := chiTransport.NewServer(answers, classifier, usage, health, logger)
	a.handler = chiTransport.NewRouter(server, cfg.Auth.APIKeys)
	return a, nil
}

// embeddingHealthChecker checks the provider behind the embedder chain, if it can.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain. The instruction prefix is outermost
// so cache keys include it.
func buildEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cfg.CacheTTLSec > 0 {
		embedder = embcache.New(base, store, cfg.Model, cfg.CacheTTL(), metrics.EmbeddingCacheTotal, logger)
	}
	if cfg.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}
	return embedder
}

// buildBudget returns nil when no limit is configured.
func buildBudget(
	ctx context.Context, cfg config.SynthesisConfig, store *dbRedis.Store, logger *zap.Logger,
) *synthesis.BudgetTracker {
	b := cfg.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := synthesis.BudgetActionWarn
	if b.Action == "reject" {
		action = synthesis.BudgetActionReject
	}
	// Connect persistence store: loads current counters from the database.
	return synthesis.NewBudgetTracker(cfg.Name, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger).
		WithStore(ctx, budgetrepo.New(store, 0, 0))
}

// scheduleFromConfig converts the configured week. Returns nil when no day is configured.
func scheduleFromConfig(h config.HoursConfig) answer.HoursSource {
	if len(h.Days) == 0 {
		return nil
	}
	sched := answer.StaticHours{
		Days:     make(map[time.Weekday]answer.DayHours, len(h.Days)),
		Location: h.Location(),
		Note:     h.Note,
	}
	for name, d := range h.Days {
		wd, ok := config.Weekdays[strings.ToLower(name)]
		if !ok {
			continue
		}
		sched.Days[wd] = answer.DayHours{Open: d.Open, Close: d.Close, Closed: d.Closed}
	}
	return sched
}
