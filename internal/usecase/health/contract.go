package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// GenerationChecker checks generation provider availability.
type GenerationChecker interface {
	HealthCheck(ctx context.Context) error
}

// KnowledgeBaseLister lists knowledge bases present in the fragment source.
type KnowledgeBaseLister interface {
	KnowledgeBases(ctx context.Context) ([]string, error)
}
