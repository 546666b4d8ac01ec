package coach

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport contains generation token usage for a time period.
// PeriodStart and PeriodEnd are zero for PeriodTotal.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	TokensUsed  int64
	Budget      BudgetStatus
}

// BudgetStatus tracks token quota state. A limit of 0 means unlimited.
type BudgetStatus struct {
	TokensLimit     int64
	TokensRemaining int64
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns a generation usage report for the given period.
// Observer always records success: the underlying use case is in-memory
// and does not produce errors.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "usage"}, start, nil) }()

	report := c.usageSvc.GetReport(ctx, domusage.Period(period))
	out := UsageReport{
		Period:     UsagePeriod(report.Period),
		TokensUsed: report.TokensUsed,
		Budget: BudgetStatus{
			TokensLimit:     report.Budget.TokensLimit,
			TokensRemaining: report.Budget.TokensRemaining,
			IsExhausted:     report.Budget.Exhausted,
		},
	}
	if report.PeriodStart > 0 {
		out.PeriodStart = time.UnixMilli(report.PeriodStart).UTC()
		out.PeriodEnd = time.UnixMilli(report.PeriodEnd).UTC()
	}
	if report.Budget.ResetsAt > 0 {
		out.Budget.ResetsAt = time.UnixMilli(report.Budget.ResetsAt).UTC()
	}
	return out
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
