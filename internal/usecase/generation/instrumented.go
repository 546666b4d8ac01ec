package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/metrics"
)

// BudgetChecker is the budget surface used by Instrumented.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Instrumented wraps a generator with budget enforcement and logging.
// Request, latency and token metrics are recorded by the transport.
type Instrumented struct {
	inner  domain.Generator
	model  string
	budget BudgetChecker
	logger *zap.Logger
}

// NewInstrumented wraps inner. budget may be nil.
func NewInstrumented(inner domain.Generator, model string, budget BudgetChecker, logger *zap.Logger) *Instrumented {
	return &Instrumented{inner: inner, model: model, budget: budget, logger: logger}
}

// Generate checks the budget, delegates and records token usage.
func (g *Instrumented) Generate(ctx context.Context, prompt string) (domain.Generation, error) {
	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			g.logger.Error("Generation budget exceeded", zap.String("model", g.model), zap.Error(err))
			return domain.Generation{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	gen, err := g.inner.Generate(ctx, prompt)
	duration := time.Since(start)

	if err != nil {
		g.logger.Error("Generation failed",
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Int("prompt_chars", len(prompt)),
			zap.Error(err),
		)
		return domain.Generation{}, fmt.Errorf("generate: %w", err)
	}

	if g.budget != nil && gen.TotalTokens > 0 {
		g.budget.Record(int64(gen.TotalTokens))
		metrics.GenerationBudgetTokensRemaining.WithLabelValues("daily").Set(float64(g.budget.RemainingDaily()))
		metrics.GenerationBudgetTokensRemaining.WithLabelValues("monthly").Set(float64(g.budget.RemainingMonthly()))
	}

	g.logger.Debug("Generation completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", gen.PromptTokens),
		zap.Int("completion_tokens", gen.CompletionTokens),
	)
	return gen, nil
}
