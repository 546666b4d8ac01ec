// Package assessment models scored feedback on a learner's approach.
package assessment

import "time"

// DefaultScore is used when the model response carries no score.
const DefaultScore = 75

// Result is the feedback on one learner submission.
type Result struct {
	ID             string
	Feedback       string
	Score          int
	Strengths      []string
	Improvements   []string
	TechnicalNotes string
	CreatedAt      time.Time
}

// ClampScore bounds s to the 0..100 scale.
func ClampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}
