package coach

import "github.com/kailas-cloud/coach/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrKnowledgeBaseUnavailable = domain.ErrKnowledgeBaseUnavailable
	ErrInvalidLevel             = domain.ErrInvalidLevel
	ErrInvalidRequest           = domain.ErrInvalidRequest
	ErrGenerationFailed         = domain.ErrGenerationFailed
	ErrGenerationQuotaExceeded  = domain.ErrGenerationQuotaExceeded
)
