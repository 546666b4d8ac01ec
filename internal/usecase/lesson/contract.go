package lesson

import (
	"context"

	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// Contexter assembles knowledge base contexts.
type Contexter interface {
	Context(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error)
}
