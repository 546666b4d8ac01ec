package domain

import "context"

// Generator is the text-in, text-out capability of a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// HealthChecker verifies generation provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Generation carries model output and token usage through the decorator chain.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
