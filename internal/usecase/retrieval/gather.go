package retrieval

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Contexter assembles the context of one knowledge base.
type Contexter interface {
	Context(ctx context.Context, req Request) (AssembledContext, error)
}

// Gather assembles the contexts of kbs concurrently and returns the
// available ones in kbs order. Unavailable knowledge bases are skipped.
func Gather(ctx context.Context, c Contexter, kbs []string, level, topic string) ([]AssembledContext, error) {
	results := make([]AssembledContext, len(kbs))

	g, gctx := errgroup.WithContext(ctx)
	for i, kb := range kbs {
		g.Go(func() error {
			ac, err := c.Context(gctx, Request{KnowledgeBase: kb, Level: level, Topic: topic})
			if err != nil {
				return fmt.Errorf("context %s: %w", kb, err)
			}
			results[i] = ac
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]AssembledContext, 0, len(results))
	for _, ac := range results {
		if ac.Available {
			out = append(out, ac)
		}
	}
	return out, nil
}

// Sections joins contexts as titled knowledge base blocks. Empty input yields "".
func Sections(contexts []AssembledContext) string {
	parts := make([]string, 0, len(contexts))
	for _, ac := range contexts {
		parts = append(parts, fmt.Sprintf("=== %s KNOWLEDGE BASE ===\n%s\n", strings.ToUpper(ac.KnowledgeBase), ac.Text))
	}
	return strings.Join(parts, "\n\n")
}

// Names returns the knowledge base names of contexts.
func Names(contexts []AssembledContext) []string {
	out := make([]string, len(contexts))
	for i, ac := range contexts {
		out[i] = ac.KnowledgeBase
	}
	return out
}
