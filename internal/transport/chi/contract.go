package chi

import (
	"context"

	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// Lessons generates lessons and doubt answers.
type Lessons interface {
	Lesson(ctx context.Context, req lessonuc.Request) (lessonuc.Lesson, error)
	Doubt(ctx context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error)
}

// Mentor answers free-form questions.
type Mentor interface {
	Answer(ctx context.Context, req mentoruc.Request) (mentoruc.Response, error)
}

// Assessor scores learner submissions.
type Assessor interface {
	Assess(ctx context.Context, req assessmentuc.Request) (domassessment.Result, error)
}

// Contexts exposes assembled knowledge base contexts.
type Contexts interface {
	Context(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error)
	KnowledgeBases(ctx context.Context) ([]string, error)
}

// Usage reports generation token usage.
type Usage interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Health reports readiness.
type Health interface {
	Check(ctx context.Context) healthuc.Report
}
