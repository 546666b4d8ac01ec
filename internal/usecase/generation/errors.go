package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/coach/internal/domain"
)

// Failed normalizes a generator error. Quota, cancellation and already
// classified failures pass through; anything else is wrapped with
// domain.ErrGenerationFailed.
func Failed(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrGenerationQuotaExceeded),
		errors.Is(err, domain.ErrGenerationFailed),
		errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
}
