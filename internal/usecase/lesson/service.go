// Package lesson generates level-tuned lessons and answers learner doubts
// from an assembled knowledge base context.
package lesson

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
	"github.com/kailas-cloud/coach/internal/domain/level"
	"github.com/kailas-cloud/coach/internal/logger"
	"github.com/kailas-cloud/coach/internal/usecase/generation"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// Request asks for a lesson.
type Request struct {
	KnowledgeBase string
	Level         string
	Topic         string
}

// Source describes the context a response was generated from.
type Source struct {
	KnowledgeBase  string
	TotalFragments int
	GroupCount     int
	Strategy       grouping.Strategy
	Cached         bool
}

// Lesson is a generated training lesson.
type Lesson struct {
	Content   string
	Level     level.Level
	Sections  []string
	Source    Source
	Tokens    int
	CreatedAt time.Time
}

// DoubtRequest is a learner question about a knowledge base, optionally
// about a lesson they just read.
type DoubtRequest struct {
	KnowledgeBase string
	Question      string
	Lesson        string
}

// Answer is a generated doubt resolution.
type Answer struct {
	Content   string
	Source    Source
	Tokens    int
	CreatedAt time.Time
}

// Service generates lessons and doubt answers.
type Service struct {
	contexts  Contexter
	gen       domain.Generator
	defaultKB string
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a lesson service. defaultKB is used when a request names none.
func New(contexts Contexter, gen domain.Generator, defaultKB string, logger *zap.Logger) *Service {
	return &Service{contexts: contexts, gen: gen, defaultKB: defaultKB, now: time.Now, logger: logger}
}

// Lesson generates a lesson for req.Level from the knowledge base context.
func (s *Service) Lesson(ctx context.Context, req Request) (Lesson, error) {
	lvl, err := level.Parse(req.Level)
	if err != nil {
		return Lesson{}, err
	}
	kb := s.kb(req.KnowledgeBase)

	ac, err := s.contexts.Context(ctx, retrieval.Request{KnowledgeBase: kb, Level: string(lvl), Topic: req.Topic})
	if err != nil {
		return Lesson{}, fmt.Errorf("assemble context: %w", err)
	}
	if err := ac.Err(); err != nil {
		return Lesson{}, err
	}

	profile := level.ProfileFor(lvl)
	logger.FromContextOr(ctx, s.logger).Info("Generating lesson",
		zap.String("knowledge_base", kb),
		zap.String("level", string(lvl)),
		zap.Strings("sections", profile.Sections),
	)

	gen, err := s.gen.Generate(ctx, lessonPrompt(kb, profile, req.Topic, ac.Text))
	if err != nil {
		return Lesson{}, fmt.Errorf("generate lesson: %w", generation.Failed(err))
	}

	return Lesson{
		Content:   gen.Text,
		Level:     lvl,
		Sections:  profile.Sections,
		Source:    sourceOf(ac),
		Tokens:    gen.TotalTokens,
		CreatedAt: s.now().UTC(),
	}, nil
}

// Doubt answers a question grounded in the advanced-level context.
func (s *Service) Doubt(ctx context.Context, req DoubtRequest) (Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidRequest)
	}
	kb := s.kb(req.KnowledgeBase)

	ac, err := s.contexts.Context(ctx, retrieval.Request{KnowledgeBase: kb, Level: string(level.Advanced), Topic: question})
	if err != nil {
		return Answer{}, fmt.Errorf("assemble context: %w", err)
	}
	if err := ac.Err(); err != nil {
		return Answer{}, err
	}

	gen, err := s.gen.Generate(ctx, doubtPrompt(kb, question, req.Lesson, ac.Text))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", generation.Failed(err))
	}

	return Answer{
		Content:   gen.Text,
		Source:    sourceOf(ac),
		Tokens:    gen.TotalTokens,
		CreatedAt: s.now().UTC(),
	}, nil
}

func (s *Service) kb(name string) string {
	if kb := strings.TrimSpace(name); kb != "" {
		return kb
	}
	return s.defaultKB
}

func sourceOf(ac retrieval.AssembledContext) Source {
	return Source{
		KnowledgeBase:  ac.KnowledgeBase,
		TotalFragments: ac.TotalFragments,
		GroupCount:     ac.GroupCount,
		Strategy:       ac.Strategy,
		Cached:         ac.Cached,
	}
}
