package retrieval

import (
	"context"

	"github.com/kailas-cloud/coach/internal/domain/fragment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
)

// Source loads the full fragment list of a knowledge base.
type Source interface {
	Load(ctx context.Context, kb string) ([]fragment.Fragment, error)
	KnowledgeBases(ctx context.Context) ([]string, error)
}

// Cache keeps one grouping snapshot per knowledge base.
type Cache interface {
	Get(ctx context.Context, kb string) (grouping.Entry, bool)
	Put(ctx context.Context, e grouping.Entry) error
}

// Grouper partitions fragments into topical groups. It never fails.
type Grouper interface {
	Group(ctx context.Context, kb string, fragments []fragment.Fragment) grouping.Result
}

// Renderer turns a grouping into the context document.
type Renderer interface {
	Render(kb, level string, fragments []fragment.Fragment, groups []grouping.Group) string
}
