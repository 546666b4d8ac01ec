package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
// Total has no boundaries and reports the monthly counters.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	r := domusage.Report{Period: period}
	var limit, remaining int64

	switch period {
	case domusage.PeriodDay:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodStart = start.UnixMilli()
		r.PeriodEnd = start.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			limit, remaining, r.TokensUsed = s.br.DailyLimit(), s.br.RemainingDaily(), s.br.DailyUsed()
		}
	case domusage.PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodStart = start.UnixMilli()
		r.PeriodEnd = start.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			limit, remaining, r.TokensUsed = s.br.MonthlyLimit(), s.br.RemainingMonthly(), s.br.MonthlyUsed()
		}
	default:
		if s.br != nil {
			limit, remaining, r.TokensUsed = s.br.MonthlyLimit(), s.br.RemainingMonthly(), s.br.MonthlyUsed()
		}
	}

	if s.br != nil {
		r.Provider = s.br.Provider()
	}
	r.Budget = domusage.Budget{
		TokensLimit:     limit,
		TokensRemaining: remaining,
		Exhausted:       limit > 0 && remaining <= 0,
		ResetsAt:        r.PeriodEnd,
	}
	return r
}
