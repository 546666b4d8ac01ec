package generation

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGenerationMetrics()
	os.Exit(m.Run())
}

type mockGenerator struct {
	gen     domain.Generation
	err     error
	calls   int
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.Generation, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	return m.gen, m.err
}

func TestInstrumented_Success(t *testing.T) {
	inner := &mockGenerator{gen: domain.Generation{Text: "ok", PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42}}
	bt := NewBudgetTracker("local", 1000, 0, BudgetActionReject, zap.NewNop())
	g := NewInstrumented(inner, "test-model", bt, zap.NewNop())

	gen, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.Text != "ok" {
		t.Errorf("Text = %q", gen.Text)
	}
	if bt.DailyUsed() != 42 {
		t.Errorf("expected 42 tokens recorded, got %d", bt.DailyUsed())
	}
}

func TestInstrumented_NilBudget(t *testing.T) {
	inner := &mockGenerator{gen: domain.Generation{Text: "ok", TotalTokens: 5}}
	g := NewInstrumented(inner, "test-model", nil, zap.NewNop())

	if _, err := g.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstrumented_BudgetRejects(t *testing.T) {
	inner := &mockGenerator{gen: domain.Generation{Text: "ok"}}
	bt := NewBudgetTracker("local", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)
	g := NewInstrumented(inner, "test-model", bt, zap.NewNop())

	_, err := g.Generate(context.Background(), "hello")
	if !errors.Is(err, domain.ErrGenerationQuotaExceeded) {
		t.Fatalf("expected ErrGenerationQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner generator called %d times", inner.calls)
	}
}

func TestInstrumented_InnerError(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrGenerationFailed}
	bt := NewBudgetTracker("local", 1000, 0, BudgetActionReject, zap.NewNop())
	g := NewInstrumented(inner, "test-model", bt, zap.NewNop())

	_, err := g.Generate(context.Background(), "hello")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if bt.DailyUsed() != 0 {
		t.Errorf("failed call recorded %d tokens", bt.DailyUsed())
	}
}
