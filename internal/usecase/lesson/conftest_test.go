package lesson

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

type mockContexter struct {
	contextFn func(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error)
	requests  []retrieval.Request
}

func (m *mockContexter) Context(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error) {
	m.requests = append(m.requests, req)
	if m.contextFn != nil {
		return m.contextFn(ctx, req)
	}
	return retrieval.AssembledContext{
		KnowledgeBase:  req.KnowledgeBase,
		Level:          req.Level,
		Text:           "LLM-ORGANIZED: " + req.KnowledgeBase,
		TotalFragments: 12,
		GroupCount:     3,
		Strategy:       grouping.StrategyModel,
		Available:      true,
	}, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (domain.Generation, error)
	prompts    []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (domain.Generation, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return domain.Generation{Text: "## 1. Introduction", TotalTokens: 120}, nil
}

func newTestService() (*Service, *mockContexter, *mockGenerator) {
	c, g := &mockContexter{}, &mockGenerator{}
	return New(c, g, "mml", zap.NewNop()), c, g
}
