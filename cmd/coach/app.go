package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/config"
	"github.com/kailas-cloud/coach/internal/db"
	dbRedis "github.com/kailas-cloud/coach/internal/db/redis"
	dbValkey "github.com/kailas-cloud/coach/internal/db/valkey"
	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/metrics"
	budgetrepo "github.com/kailas-cloud/coach/internal/repository/budget"
	fragmentrepo "github.com/kailas-cloud/coach/internal/repository/fragment"
	"github.com/kailas-cloud/coach/internal/repository/groupcache"
	openaiGen "github.com/kailas-cloud/coach/internal/transport/openai"
	"github.com/kailas-cloud/coach/internal/usecase/assembly"
	generationuc "github.com/kailas-cloud/coach/internal/usecase/generation"
	groupinguc "github.com/kailas-cloud/coach/internal/usecase/grouping"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// app is the composition root shared by the serve, context and warm commands.
type app struct {
	store     db.Store
	provider  *openaiGen.Generator
	budget    *generationuc.BudgetTracker
	generator domain.Generator
	retrieval *retrieval.Service
}

func connectStore(ctx context.Context, cfg config.Config, log *zap.Logger) (db.Store, error) {
	rcfg := dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	}

	var store db.Store
	switch cfg.Database.Driver {
	case "valkey":
		s, err := dbValkey.NewStore(rcfg, cfg.Fragments.IndexPrefix, cfg.Fragments.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("create valkey store: %w", err)
		}
		store = s
	default:
		s, err := dbRedis.NewStore(rcfg)
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		store = s
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	log.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Strings("addrs", cfg.Database.Addrs),
	)
	return store, nil
}

func buildApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	store, err := connectStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	metrics.RegisterGenerationMetrics()

	provider := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		Timeout:       time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		TLSSkipVerify: cfg.LLM.TLSSkipVerify,
		Logger:        log,
	})

	// one tracker shared by the generator chain and the usage report
	var budget *generationuc.BudgetTracker
	b := cfg.LLM.Budget
	if b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0 {
		action := generationuc.BudgetActionWarn
		if b.Action == "reject" {
			action = generationuc.BudgetActionReject
		}
		budget = generationuc.NewBudgetTracker(cfg.LLM.Provider(), b.DailyTokenLimit, b.MonthlyTokenLimit, action, log).
			WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	// nil interface, not a typed nil pointer
	var budgetChecker generationuc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}
	generator := generationuc.NewInstrumented(provider, cfg.LLM.Model, budgetChecker, log)

	source, err := buildSource(cfg, store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	engine := groupinguc.New(generator, groupinguc.Config{
		Timeout:        time.Duration(cfg.LLM.GroupingTimeoutSec) * time.Second,
		ManifestBudget: cfg.Grouping.ManifestBudget,
		PreviewChars:   cfg.Grouping.PreviewChars,
	}, log)

	svc := retrieval.New(
		source,
		groupcache.New(store, metrics.GroupingCacheTotal, log),
		engine,
		assembly.New(cfg.Assembly.ImagesRoot),
		log,
	)

	log.Info("Generation provider configured",
		zap.String("provider", cfg.LLM.Provider()),
		zap.String("model", provider.Model()),
		zap.String("fragment_source", cfg.Fragments.Source),
		zap.Bool("budget", budget != nil),
	)

	return &app{
		store:     store,
		provider:  provider,
		budget:    budget,
		generator: generator,
		retrieval: svc,
	}, nil
}

func buildSource(cfg config.Config, store db.Store, log *zap.Logger) (retrieval.Source, error) {
	switch cfg.Fragments.Source {
	case config.SourceDir:
		return fragmentrepo.NewDirSource(cfg.Fragments.Roots, cfg.Fragments.LegacyRoots, cfg.Fragments.FileName, log), nil
	case config.SourceIndex:
		return fragmentrepo.NewIndexSource(store, cfg.Fragments.IndexPrefix, log), nil
	default:
		return nil, fmt.Errorf("unknown fragment source %q", cfg.Fragments.Source)
	}
}

func (a *app) Close() {
	a.store.Close()
}
