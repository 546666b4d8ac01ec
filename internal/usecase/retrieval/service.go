// Package retrieval runs the load, group, cache and render pipeline that
// produces the assembled context of a knowledge base.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/fragment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
	"github.com/kailas-cloud/coach/internal/logger"
	"github.com/kailas-cloud/coach/internal/metrics"
)

// Unavailability reasons.
const (
	StatusNoIndex    = "no_index"
	StatusLoadFailed = "load_failed"
	StatusEmpty      = "empty"
)

// Request selects a knowledge base and the advisory level and topic.
type Request struct {
	KnowledgeBase string
	Level         string
	Topic         string
}

// AssembledContext is the rendered context and its provenance.
// When Available is false Text is empty and Status tells why.
type AssembledContext struct {
	Text           string
	KnowledgeBase  string
	Level          string
	Topic          string
	TotalFragments int
	GroupCount     int
	Uncovered      int
	Strategy       grouping.Strategy
	Cached         bool
	Available      bool
	Status         string
	AvailableKBs   []string
}

// Err returns the unavailable error of a context, nil when available.
func (c AssembledContext) Err() error {
	if c.Available {
		return nil
	}
	return domain.NewUnavailable(c.KnowledgeBase, c.Status, c.AvailableKBs)
}

// WarmResult summarizes a cache warm-up of one knowledge base.
type WarmResult struct {
	KnowledgeBase string
	Fragments     int
	Groups        int
	Strategy      grouping.Strategy
	Cached        bool
}

// Service orchestrates retrieval. Regrouping of one knowledge base at one
// corpus size runs once at a time; concurrent callers share the result.
type Service struct {
	source   Source
	cache    Cache
	grouper  Grouper
	renderer Renderer
	flight   singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a retrieval service.
func New(source Source, cache Cache, grouper Grouper, renderer Renderer, logger *zap.Logger) *Service {
	return &Service{
		source:   source,
		cache:    cache,
		grouper:  grouper,
		renderer: renderer,
		now:      time.Now,
		logger:   logger,
	}
}

// Context assembles the context of req.KnowledgeBase. An unavailable
// knowledge base is reported in the result, not as an error; only
// cancellation of ctx is returned.
func (s *Service) Context(ctx context.Context, req Request) (AssembledContext, error) {
	kb := strings.TrimSpace(req.KnowledgeBase)
	out := AssembledContext{KnowledgeBase: kb, Level: strings.ToLower(req.Level), Topic: req.Topic}

	fragments, status, err := s.load(ctx, kb)
	if err != nil {
		return AssembledContext{}, err
	}
	if status != "" {
		out.Status = status
		out.AvailableKBs = s.available(ctx)
		return out, nil
	}

	g, err := s.grouping(ctx, kb, fragments)
	if err != nil {
		return AssembledContext{}, err
	}

	out.Text = s.renderer.Render(kb, out.Level, fragments, g.result.Groups)
	out.TotalFragments = len(fragments)
	out.GroupCount = len(g.result.Groups)
	out.Uncovered = g.result.Uncovered
	out.Strategy = g.result.Strategy
	out.Cached = g.cached
	out.Available = true

	metrics.ContextFragments.WithLabelValues(kb).Set(float64(len(fragments)))
	return out, nil
}

// Warm loads kb and makes sure a valid grouping is cached, without rendering.
func (s *Service) Warm(ctx context.Context, kb string) (WarmResult, error) {
	kb = strings.TrimSpace(kb)
	fragments, status, err := s.load(ctx, kb)
	if err != nil {
		return WarmResult{}, err
	}
	if status != "" {
		return WarmResult{}, domain.NewUnavailable(kb, status, s.available(ctx))
	}

	g, err := s.grouping(ctx, kb, fragments)
	if err != nil {
		return WarmResult{}, err
	}
	return WarmResult{
		KnowledgeBase: kb,
		Fragments:     len(fragments),
		Groups:        len(g.result.Groups),
		Strategy:      g.result.Strategy,
		Cached:        g.cached,
	}, nil
}

// KnowledgeBases lists the knowledge bases the source can load.
func (s *Service) KnowledgeBases(ctx context.Context) ([]string, error) {
	names, err := s.source.KnowledgeBases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	return names, nil
}

// load returns the fragments of kb or an unavailability status.
// The error is non-nil only when ctx is done.
func (s *Service) load(ctx context.Context, kb string) ([]fragment.Fragment, string, error) {
	log := logger.FromContextOr(ctx, s.logger)

	fragments, err := s.source.Load(ctx, kb)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, "", ctxErr
	}
	switch {
	case errors.Is(err, domain.ErrNoIndexFound):
		log.Info("Knowledge base has no index", zap.String("knowledge_base", kb))
		return nil, StatusNoIndex, nil
	case err != nil:
		log.Error("Failed to load knowledge base", zap.String("knowledge_base", kb), zap.Error(err))
		return nil, StatusLoadFailed, nil
	case len(fragments) == 0:
		log.Info("Knowledge base is empty", zap.String("knowledge_base", kb))
		return nil, StatusEmpty, nil
	}
	return fragments, "", nil
}

func (s *Service) available(ctx context.Context) []string {
	names, err := s.source.KnowledgeBases(ctx)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Failed to list knowledge bases", zap.Error(err))
		return nil
	}
	return names
}

type groupOutcome struct {
	result grouping.Result
	cached bool
}

// grouping returns a cached grouping valid for fragments or computes and caches a new one.
func (s *Service) grouping(ctx context.Context, kb string, fragments []fragment.Fragment) (groupOutcome, error) {
	key := fmt.Sprintf("%s#%d", strings.ToLower(kb), len(fragments))

	// The shared call must not die with whichever caller started it;
	// the engine's own timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		return s.regroup(flightCtx, kb, fragments), nil
	})

	select {
	case <-ctx.Done():
		return groupOutcome{}, ctx.Err()
	case r := <-ch:
		return r.Val.(groupOutcome), nil
	}
}

func (s *Service) regroup(ctx context.Context, kb string, fragments []fragment.Fragment) groupOutcome {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("knowledge_base", kb))

	entry, ok := s.cache.Get(ctx, kb)
	switch {
	case ok && entry.ValidFor(len(fragments)):
		metrics.GroupingCacheTotal.WithLabelValues("hit").Inc()
		log.Debug("Grouping cache hit", zap.Int("fragments", len(fragments)))
		return groupOutcome{result: entry.Result(), cached: true}
	case ok:
		metrics.GroupingCacheTotal.WithLabelValues("stale").Inc()
		log.Info("Grouping cache stale",
			zap.Int("cached_fragments", entry.TotalFragments),
			zap.Int("live_fragments", len(fragments)),
		)
	}

	res := s.grouper.Group(ctx, kb, fragments)
	if err := s.cache.Put(ctx, grouping.NewEntry(kb, len(fragments), res, s.now())); err != nil {
		log.Warn("Failed to cache grouping", zap.Error(err))
	}
	return groupOutcome{result: res}
}
