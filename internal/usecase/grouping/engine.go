// Package grouping partitions a knowledge base into topical groups,
// asking the language model first and falling back to type buckets.
package grouping

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/fragment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
	"github.com/kailas-cloud/coach/internal/metrics"
)

// Engine defaults.
const (
	DefaultManifestBudget = 8000
	DefaultPreviewChars   = 250
	DefaultTimeout        = 120 * time.Second
)

// Config tunes the engine.
type Config struct {
	Timeout        time.Duration // bounds the model call; <= 0 uses DefaultTimeout
	ManifestBudget int
	PreviewChars   int
}

// Engine groups fragments. It never fails: every error path ends in FallbackGroups.
type Engine struct {
	gen    domain.Generator
	cfg    Config
	logger *zap.Logger
}

// New creates an engine. gen may be nil, in which case only the fallback is used.
func New(gen domain.Generator, cfg Config, logger *zap.Logger) *Engine {
	if cfg.ManifestBudget <= 0 {
		cfg.ManifestBudget = DefaultManifestBudget
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = DefaultPreviewChars
	}
	// Shared regroupings run detached from any caller, so the engine
	// must always carry its own deadline.
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Engine{gen: gen, cfg: cfg, logger: logger}
}

// Group partitions fragments of kb.
func (e *Engine) Group(ctx context.Context, kb string, fragments []fragment.Fragment) grouping.Result {
	res := e.group(ctx, kb, fragments)
	metrics.GroupingTotal.WithLabelValues(kb, string(res.Strategy)).Inc()
	return res
}

func (e *Engine) group(ctx context.Context, kb string, fragments []fragment.Fragment) grouping.Result {
	log := e.logger.With(zap.String("knowledge_base", kb), zap.Int("fragments", len(fragments)))

	if e.gen == nil || len(fragments) == 0 {
		return fallback(fragments)
	}

	manifest := Manifest(fragments, e.cfg.PreviewChars, e.cfg.ManifestBudget)
	prompt := groupingPrompt(kb, len(fragments), manifest)

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	gen, err := e.gen.Generate(callCtx, prompt)
	if err != nil {
		log.Warn("Model grouping failed, using type fallback",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return fallback(fragments)
	}

	outcome := ParseGroups(gen.Text, fragments)
	groups, ok := outcome.Groups()
	if !ok {
		log.Warn("Model grouping unparsable, using type fallback", zap.String("reason", outcome.Reason()))
		return fallback(fragments)
	}

	uncovered := grouping.Uncovered(groups, len(fragments))
	if uncovered > 0 {
		log.Warn("Model grouping left fragments ungrouped", zap.Int("uncovered", uncovered))
	}
	log.Info("Model grouping completed",
		zap.Int("groups", len(groups)),
		zap.Duration("duration", time.Since(start)),
	)
	return grouping.Result{Groups: groups, Strategy: grouping.StrategyModel, Uncovered: uncovered}
}

func fallback(fragments []fragment.Fragment) grouping.Result {
	return grouping.Result{Groups: FallbackGroups(fragments), Strategy: grouping.StrategyFallback}
}

// FallbackGroups buckets fragments by type: diagrams, tables, procedures.
// Empty buckets are omitted; members keep corpus order.
func FallbackGroups(fragments []fragment.Fragment) []grouping.Group {
	var images, tables, texts []fragment.Fragment
	for _, f := range fragments {
		switch fragment.Classify(f) {
		case fragment.Image:
			images = append(images, f)
		case fragment.Table:
			tables = append(tables, f)
		default:
			texts = append(texts, f)
		}
	}

	var out []grouping.Group
	for _, g := range []grouping.Group{
		{Name: grouping.NameDiagrams, Members: images},
		{Name: grouping.NameTables, Members: tables},
		{Name: grouping.NameProcedures, Members: texts},
	} {
		if g.Size() > 0 {
			out = append(out, g)
		}
	}
	return out
}
