package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every check failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckDatabase       = "database"
	CheckGeneration     = "generation"
	CheckKnowledgeBases = "knowledge_bases"
)

// Report aggregates health check results.
type Report struct {
	Status         Status
	Checks         map[string]CheckResult
	KnowledgeBases []string
}

// Service coordinates health checks. Nil dependencies are skipped.
type Service struct {
	db         DBPinger
	generation GenerationChecker
	kbs        KnowledgeBaseLister
}

// New creates a Service.
func New(db DBPinger, generation GenerationChecker, kbs KnowledgeBaseLister) *Service {
	return &Service{db: db, generation: generation, kbs: kbs}
}

// Check runs all configured checks.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Checks: make(map[string]CheckResult)}

	if s.db != nil {
		r.Checks[CheckDatabase] = result(s.db.Ping(ctx))
	}
	if s.generation != nil {
		r.Checks[CheckGeneration] = result(s.generation.HealthCheck(ctx))
	}
	if s.kbs != nil {
		names, err := s.kbs.KnowledgeBases(ctx)
		if err == nil && len(names) > 0 {
			r.Checks[CheckKnowledgeBases] = CheckOK
			r.KnowledgeBases = names
		} else {
			r.Checks[CheckKnowledgeBases] = CheckError
		}
	}

	failed := 0
	for _, v := range r.Checks {
		if v == CheckError {
			failed++
		}
	}
	switch {
	case failed == 0:
		r.Status = Healthy
	case failed == len(r.Checks):
		r.Status = Unhealthy
	default:
		r.Status = Degraded
	}
	return r
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
