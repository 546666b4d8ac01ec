// Package usage describes generation token consumption for a period.
package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ParsePeriod maps a query value to a Period, defaulting to month.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "":
		return PeriodMonth, true
	case PeriodDay, PeriodMonth, PeriodTotal:
		return Period(s), true
	default:
		return "", false
	}
}

// Budget is a snapshot of the generation token budget.
type Budget struct {
	TokensLimit     int64
	TokensRemaining int64
	Exhausted       bool
	ResetsAt        int64 // unix millis
}

// Report is generation usage for one period.
type Report struct {
	Period      Period
	PeriodStart int64 // unix millis, 0 for total
	PeriodEnd   int64
	Provider    string
	TokensUsed  int64
	Budget      Budget
}
