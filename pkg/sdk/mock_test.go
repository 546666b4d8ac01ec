package coach

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/coach/internal/db"
	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// --- contextUseCase mock ---

type mockContextUC struct {
	contextFn func(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error)
	kbsFn     func(ctx context.Context) ([]string, error)
	warmFn    func(ctx context.Context, kb string) (retrieval.WarmResult, error)
}

func (m *mockContextUC) Context(ctx context.Context, req retrieval.Request) (retrieval.AssembledContext, error) {
	return m.contextFn(ctx, req)
}

func (m *mockContextUC) KnowledgeBases(ctx context.Context) ([]string, error) {
	return m.kbsFn(ctx)
}

func (m *mockContextUC) Warm(ctx context.Context, kb string) (retrieval.WarmResult, error) {
	return m.warmFn(ctx, kb)
}

// --- lessonUseCase mock ---

type mockLessonUC struct {
	lessonFn func(ctx context.Context, req lessonuc.Request) (lessonuc.Lesson, error)
	doubtFn  func(ctx context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error)
}

func (m *mockLessonUC) Lesson(ctx context.Context, req lessonuc.Request) (lessonuc.Lesson, error) {
	return m.lessonFn(ctx, req)
}

func (m *mockLessonUC) Doubt(ctx context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error) {
	return m.doubtFn(ctx, req)
}

// --- mentorUseCase mock ---

type mockMentorUC struct {
	answerFn func(ctx context.Context, req mentoruc.Request) (mentoruc.Response, error)
}

func (m *mockMentorUC) Answer(ctx context.Context, req mentoruc.Request) (mentoruc.Response, error) {
	return m.answerFn(ctx, req)
}

// --- assessUseCase mock ---

type mockAssessUC struct {
	assessFn func(ctx context.Context, req assessmentuc.Request) (domassessment.Result, error)
}

func (m *mockAssessUC) Assess(ctx context.Context, req assessmentuc.Request) (domassessment.Result, error) {
	return m.assessFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- generator mock ---

type mockGenerator struct {
	fn func(ctx context.Context, prompt string) (Generation, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (Generation, error) {
	return m.fn(ctx, prompt)
}

// --- in-memory db.Store ---

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) HSetMulti(context.Context, []db.HashSetItem) error { return nil }

func (m *memStore) Scan(context.Context, string) ([]string, error) { return nil, nil }

func (m *memStore) Del(context.Context, ...string) error { return nil }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	m.data[key] = []byte(strconv.FormatInt(cur+val, 10))
	return nil
}

func (m *memStore) Expire(context.Context, string, time.Duration, bool) error { return nil }

func (m *memStore) CreateIndex(context.Context, *db.IndexDefinition) error { return nil }

func (m *memStore) IndexExists(context.Context, string) (bool, error) { return false, nil }

func (m *memStore) ListIndexes(context.Context) ([]string, error) { return nil, nil }

func (m *memStore) SearchList(context.Context, string, string, int, int, []string) (*db.SearchResult, error) {
	return &db.SearchResult{}, nil
}

func (m *memStore) SearchCount(context.Context, string, string) (int, error) { return 0, nil }

func (m *memStore) Close() {}

func (m *memStore) WaitForReady(context.Context, time.Duration) error { return nil }
