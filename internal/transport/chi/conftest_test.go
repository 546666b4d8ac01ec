package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.uber.org/zap"

	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

type mockLessons struct {
	lessonFn func(ctx context.Context, req lessonuc.Request) (lessonuc.Lesson, error)
	doubtFn  func(ctx context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error)
}

func (m *mockLessons) Lesson(ctx context.Context, req lessonuc.Request) (lessonuc.Lesson, error) {
	return m.lessonFn(ctx, req)
}

func (m *mockLessons) Doubt(ctx context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error) {
	return m.doubtFn(ctx, req)
}

type mockMentor struct {
	answerFn func(ctx context.Context, req mentoruc.Request) (mentoruc.Response, error)
}

func (m *mockMentor) Answer(ctx context.Context, req mentoruc.Request) (mentoruc.Response, error) {
	return m.answerFn(ctx, req)
}

type mockAssessor struct {
	assessFn func(ctx context.Context, req assessmentuc.Request) (domassessment.Result, error)
}

func (m *mockAssessor) Assess(ctx context.Context, req assessmentuc.Request) (domassessment.Result, error) {
	return m.assessFn(ctx, req)
}

type mockContexts struct {
	contextFn func(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error)
	kbsFn     func(ctx context.Context) ([]string, error)
}

func (m *mockContexts) Context(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error) {
	return m.contextFn(ctx, req)
}

func (m *mockContexts) KnowledgeBases(ctx context.Context) ([]string, error) {
	return m.kbsFn(ctx)
}

type mockUsage struct {
	reportFn func(ctx context.Context, period domusage.Period) domusage.Report
}

func (m *mockUsage) GetReport(ctx context.Context, period domusage.Period) domusage.Report {
	return m.reportFn(ctx, period)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(deps Deps, apiKeys ...string) http.Handler {
	return NewRouter(NewServer(deps, zap.NewNop()), apiKeys, zap.NewNop())
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
