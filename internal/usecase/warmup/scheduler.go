// Package warmup refreshes grouping cache entries on a cron schedule so the
// first lesson of the day does not pay for model-assisted grouping.
package warmup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// ErrDisabled is returned by Start when neither a schedule nor a start run is configured.
var ErrDisabled = errors.New("warmup disabled")

// Config controls the scheduler.
type Config struct {
	Schedule       string // standard 5-field cron expression or descriptor, empty disables
	RunOnStart     bool
	KnowledgeBases []string
}

// Outcome is the result of warming one knowledge base.
type Outcome struct {
	Result retrieval.WarmResult
	Err    error
}

// Scheduler runs warm-ups on a schedule. Runs never overlap.
type Scheduler struct {
	warmer Warmer
	cfg    Config
	logger *zap.Logger

	runMu sync.Mutex

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler.
func New(warmer Warmer, cfg Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{warmer: warmer, cfg: cfg, logger: logger}
}

// Start registers the schedule and, if configured, triggers an immediate run
// in the background. It returns ErrDisabled when there is nothing to do.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Schedule == "" && !s.cfg.RunOnStart {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("warmup already started")
	}

	runCtx, cancel := context.WithCancel(ctx)

	if s.cfg.Schedule != "" {
		c := rcron.New()
		if _, err := c.AddFunc(s.cfg.Schedule, func() { s.RunAll(runCtx) }); err != nil {
			cancel()
			return fmt.Errorf("invalid warmup schedule %q: %w", s.cfg.Schedule, err)
		}
		c.Start()
		s.cron = c
	}
	s.cancel = cancel

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunAll(runCtx)
		}()
	}

	s.logger.Info("Warmup scheduler started",
		zap.String("schedule", s.cfg.Schedule),
		zap.Bool("run_on_start", s.cfg.RunOnStart),
		zap.Strings("knowledge_bases", s.cfg.KnowledgeBases),
	)
	return nil
}

// Stop cancels in-flight runs and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel, c := s.cancel, s.cron
	s.cancel, s.cron = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	done := make(chan struct{})
	go func() {
		if c != nil {
			<-c.Stop().Done()
		}
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Warmup scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Warmup scheduler stop timed out waiting for running jobs")
	}
}

// RunAll warms every configured knowledge base in order. A failing
// knowledge base is logged and does not stop the others.
func (s *Scheduler) RunAll(ctx context.Context) []Outcome {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	outcomes := make([]Outcome, 0, len(s.cfg.KnowledgeBases))
	failed := 0
	for _, kb := range s.cfg.KnowledgeBases {
		if ctx.Err() != nil {
			break
		}
		res, err := s.warmer.Warm(ctx, kb)
		outcomes = append(outcomes, Outcome{Result: res, Err: err})
		if err != nil {
			failed++
			s.logger.Warn("Warmup failed", zap.String("knowledge_base", kb), zap.Error(err))
			continue
		}
		s.logger.Debug("Warmup done",
			zap.String("knowledge_base", kb),
			zap.Int("fragments", res.Fragments),
			zap.Int("groups", res.Groups),
			zap.String("strategy", string(res.Strategy)),
			zap.Bool("cached", res.Cached),
		)
	}

	s.logger.Info("Warmup run finished",
		zap.Int("knowledge_bases", len(outcomes)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	return outcomes
}
