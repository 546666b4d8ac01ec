package warmup

import (
	"context"

	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// Warmer fills the grouping cache of one knowledge base.
type Warmer interface {
	Warm(ctx context.Context, kb string) (retrieval.WarmResult, error)
}
