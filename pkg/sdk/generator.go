package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/coach/internal/domain"
)

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// Generation carries model output and token counts.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// generatorAdapter wraps the public Generator to satisfy domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, prompt string) (domain.Generation, error) {
	g, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("generate: %w", err)
	}
	return domain.Generation{
		Text:             g.Text,
		PromptTokens:     g.PromptTokens,
		CompletionTokens: g.CompletionTokens,
		TotalTokens:      g.TotalTokens,
	}, nil
}

// noopGenerator fails every call (used when no generator is configured).
type noopGenerator struct{}

func (noopGenerator) Generate(context.Context, string) (domain.Generation, error) {
	return domain.Generation{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed,
		errors.New("coach: generator not configured (use WithGenerator)"))
}
