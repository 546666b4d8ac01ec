package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/db"
	dbRedis "github.com/kailas-cloud/coach/internal/db/redis"
	dbValkey "github.com/kailas-cloud/coach/internal/db/valkey"
	"github.com/kailas-cloud/coach/internal/domain"
	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	budgetrepo "github.com/kailas-cloud/coach/internal/repository/budget"
	fragmentrepo "github.com/kailas-cloud/coach/internal/repository/fragment"
	"github.com/kailas-cloud/coach/internal/repository/groupcache"
	"github.com/kailas-cloud/coach/internal/usecase/assembly"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	generationuc "github.com/kailas-cloud/coach/internal/usecase/generation"
	groupinguc "github.com/kailas-cloud/coach/internal/usecase/grouping"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/coach/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultFileName         = "fragments.parquet"
	defaultIndexPrefix      = "coach:idx:"
	defaultKeyPrefix        = "coach:frag:"
	budgetProvider          = "sdk"
)

var (
	defaultRoots       = []string{"indexes"}
	defaultLegacyRoots = []string{".", "faiss_indexes"}
	defaultConsulted   = []string{"mml", "alarm_handling"}
)

// Internal interfaces for substitution in tests.
type contextUseCase interface {
	Context(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error)
	KnowledgeBases(ctx context.Context) ([]string, error)
	Warm(ctx context.Context, kb string) (retrieval.WarmResult, error)
}

type lessonUseCase interface {
	Lesson(ctx context.Context, req lessonuc.Request) (lessonuc.Lesson, error)
	Doubt(ctx context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error)
}

type mentorUseCase interface {
	Answer(ctx context.Context, req mentoruc.Request) (mentoruc.Response, error)
}

type assessUseCase interface {
	Assess(ctx context.Context, req assessmentuc.Request) (domassessment.Result, error)
}

// Client is the coach SDK entry point.
type Client struct {
	store     db.Store
	contexts  contextUseCase
	lessons   lessonUseCase
	mentor    mentorUseCase
	assessor  assessUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New creates a coach Client and connects to the database that holds the
// grouping cache, budget counters and, optionally, the fragment indexes.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("coach: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("coach: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(ctx, store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	rcfg := dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	}
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(rcfg, cfg.fragmentIndexPrefix(), defaultKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("coach: create valkey store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(rcfg)
		if err != nil {
			return nil, fmt.Errorf("coach: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("coach: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()

	var source retrieval.Source
	if cfg.useIndex {
		source = fragmentrepo.NewIndexSource(store, cfg.fragmentIndexPrefix(), nop)
	} else {
		roots := cfg.fragmentRoots
		if len(roots) == 0 {
			roots = defaultRoots
		}
		source = fragmentrepo.NewDirSource(roots, defaultLegacyRoots, defaultFileName, nop)
	}

	var budget *generationuc.BudgetTracker
	if cfg.dailyLimit > 0 || cfg.monthLimit > 0 {
		action := generationuc.BudgetActionWarn
		if cfg.rejectOver {
			action = generationuc.BudgetActionReject
		}
		budget = generationuc.NewBudgetTracker(budgetProvider, cfg.dailyLimit, cfg.monthLimit, action, nop).
			WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	// grouping needs a nil interface to skip straight to the fallback
	var grouper domain.Generator
	var generator domain.Generator = noopGenerator{}
	var genChecker healthuc.GenerationChecker
	if cfg.generator != nil {
		var budgetChecker generationuc.BudgetChecker
		if budget != nil {
			budgetChecker = budget
		}
		generator = generationuc.NewInstrumented(&generatorAdapter{inner: cfg.generator}, cfg.model, budgetChecker, nop)
		grouper = generator
		if hc, ok := cfg.generator.(healthuc.GenerationChecker); ok {
			genChecker = hc
		}
	}

	contexts := retrieval.New(
		source,
		groupcache.New(store, nil, nop),
		groupinguc.New(grouper, groupinguc.Config{Timeout: cfg.groupTimeout, PreviewChars: cfg.previewSize}, nop),
		assembly.New(cfg.imagesRoot),
		nop,
	)

	defaultKB := cfg.defaultKB
	if defaultKB == "" {
		defaultKB = defaultConsulted[0]
	}
	mentorKBs, assessKBs := cfg.mentorKBs, cfg.assessKBs
	if len(mentorKBs) == 0 {
		mentorKBs = defaultConsulted
	}
	if len(assessKBs) == 0 {
		assessKBs = mentorKBs
	}

	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}

	return &Client{
		store:     store,
		contexts:  contexts,
		lessons:   lessonuc.New(contexts, generator, defaultKB, nop),
		mentor:    mentoruc.New(contexts, generator, mentorKBs, nop),
		assessor:  assessmentuc.New(contexts, generator, assessKBs, nop),
		healthSvc: healthuc.New(store, genChecker, contexts),
		usageSvc:  usageuc.New(budgetReader),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "ping"}, start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
