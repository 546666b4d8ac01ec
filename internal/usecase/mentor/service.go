// Package mentor answers free-form technical questions the way a senior
// engineer would, using every configured knowledge base it can reach.
package mentor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/level"
	"github.com/kailas-cloud/coach/internal/logger"
	"github.com/kailas-cloud/coach/internal/usecase/generation"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// DefaultContext labels questions asked without a context.
const DefaultContext = "training"

const noKnowledge = "No specific knowledge base content found. Use your general telecom expertise."

// Request is a mentor question.
type Request struct {
	Query   string
	Context string
}

// Response is the mentor guidance and the knowledge bases it drew on.
type Response struct {
	Content        string
	KnowledgeBases []string
	Tokens         int
	CreatedAt      time.Time
}

// Service answers mentor questions.
type Service struct {
	contexts retrieval.Contexter
	gen      domain.Generator
	kbs      []string
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a mentor service consulting kbs.
func New(contexts retrieval.Contexter, gen domain.Generator, kbs []string, logger *zap.Logger) *Service {
	return &Service{contexts: contexts, gen: gen, kbs: kbs, now: time.Now, logger: logger}
}

// Answer gathers the available knowledge base contexts and asks the model.
// Without any available context the model answers from general expertise.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	label := strings.TrimSpace(req.Context)
	if label == "" {
		label = DefaultContext
	}

	contexts, err := retrieval.Gather(ctx, s.contexts, s.kbs, string(level.Advanced), query)
	if err != nil {
		return Response{}, fmt.Errorf("gather contexts: %w", err)
	}

	knowledge := retrieval.Sections(contexts)
	if knowledge == "" {
		knowledge = noKnowledge
		logger.FromContextOr(ctx, s.logger).Warn("No knowledge base available for mentor",
			zap.Strings("knowledge_bases", s.kbs),
		)
	}

	gen, err := s.gen.Generate(ctx, prompt(query, label, knowledge))
	if err != nil {
		return Response{}, fmt.Errorf("generate guidance: %w", generation.Failed(err))
	}

	return Response{
		Content:        gen.Text,
		KnowledgeBases: retrieval.Names(contexts),
		Tokens:         gen.TotalTokens,
		CreatedAt:      s.now().UTC(),
	}, nil
}

func prompt(query, label, knowledge string) string {
	return fmt.Sprintf(`You are a senior telecom engineer and mentor with decades of experience.

USER'S QUESTION: %s

CONTEXT: %s

RELEVANT KNOWLEDGE BASE CONTENT:
%s

YOUR ROLE: give production-grade guidance as a senior mentor would:
1. Direct Answer - clear, concise answer to the question
2. Best Practices - industry-standard approaches and patterns
3. Common Pitfalls - what to watch out for
4. Real-World Example - a practical scenario or use case
5. Next Steps - recommended actions or learning path
6. Additional Resources - where to find more information

STYLE: professional but approachable. Use examples from the knowledge base
when available. Be specific and actionable. Reference exact commands,
procedures or architecture when relevant.

RESPONSE:
`, query, label, knowledge)
}
