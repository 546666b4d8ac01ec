package coach

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/coach/internal/domain"
	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
	"github.com/kailas-cloud/coach/internal/domain/level"
	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestContext(t *testing.T) {
	var gotReq retrieval.Request
	c := &Client{contexts: &mockContextUC{
		contextFn: func(_ context.Context, req retrieval.Request) (retrieval.AssembledContext, error) {
			gotReq = req
			return retrieval.AssembledContext{
				Text:           "rendered",
				KnowledgeBase:  "mml",
				Level:          "advanced",
				Topic:          "cells",
				TotalFragments: 12,
				GroupCount:     3,
				Uncovered:      1,
				Strategy:       grouping.StrategyModel,
				Cached:         true,
				Available:      true,
			}, nil
		},
	}}

	got, err := c.Context(context.Background(), "mml", LevelAdvanced, "cells")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.KnowledgeBase != "mml" || gotReq.Level != "advanced" || gotReq.Topic != "cells" {
		t.Errorf("unexpected request %+v", gotReq)
	}
	want := Context{
		KnowledgeBase: "mml", Level: LevelAdvanced, Topic: "cells", Text: "rendered",
		Fragments: 12, Groups: 3, Uncovered: 1, Strategy: "model", Cached: true,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestContext_Unavailable(t *testing.T) {
	c := &Client{contexts: &mockContextUC{
		contextFn: func(context.Context, retrieval.Request) (retrieval.AssembledContext, error) {
			return retrieval.AssembledContext{
				KnowledgeBase: "ran",
				Status:        retrieval.StatusNoIndex,
				AvailableKBs:  []string{"mml"},
			}, nil
		},
	}}

	_, err := c.Context(context.Background(), "ran", LevelBeginner, "")
	if !errors.Is(err, ErrKnowledgeBaseUnavailable) {
		t.Fatalf("expected ErrKnowledgeBaseUnavailable, got %v", err)
	}
	var ue *domain.UnavailableError
	if !errors.As(err, &ue) || ue.Available[0] != "mml" {
		t.Errorf("expected UnavailableError listing mml, got %v", err)
	}
}

func TestContext_Cancelled(t *testing.T) {
	c := &Client{contexts: &mockContextUC{
		contextFn: func(ctx context.Context, _ retrieval.Request) (retrieval.AssembledContext, error) {
			return retrieval.AssembledContext{}, ctx.Err()
		},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Context(ctx, "mml", LevelBeginner, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestKnowledgeBases(t *testing.T) {
	c := &Client{contexts: &mockContextUC{
		kbsFn: func(context.Context) ([]string, error) { return []string{"alarm_handling", "mml"}, nil },
	}}

	names, err := c.KnowledgeBases(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[1] != "mml" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestWarm(t *testing.T) {
	c := &Client{contexts: &mockContextUC{
		warmFn: func(_ context.Context, kb string) (retrieval.WarmResult, error) {
			return retrieval.WarmResult{KnowledgeBase: kb, Fragments: 40, Groups: 6, Strategy: grouping.StrategyFallback}, nil
		},
	}}

	got, err := c.Warm(context.Background(), "mml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.KnowledgeBase != "mml" || got.Fragments != 40 || got.Groups != 6 || got.Strategy != "fallback" || got.Cached {
		t.Errorf("unexpected warm result %+v", got)
	}
}

func TestWarm_Error(t *testing.T) {
	c := &Client{contexts: &mockContextUC{
		warmFn: func(_ context.Context, kb string) (retrieval.WarmResult, error) {
			return retrieval.WarmResult{}, domain.NewUnavailable(kb, retrieval.StatusEmpty, nil)
		},
	}}

	if _, err := c.Warm(context.Background(), "mml"); !errors.Is(err, ErrKnowledgeBaseUnavailable) {
		t.Fatalf("expected ErrKnowledgeBaseUnavailable, got %v", err)
	}
}

func TestLesson(t *testing.T) {
	c := &Client{lessons: &mockLessonUC{
		lessonFn: func(_ context.Context, req lessonuc.Request) (lessonuc.Lesson, error) {
			if req.Level != "beginner" || req.KnowledgeBase != "mml" || req.Topic != "alarms" {
				t.Errorf("unexpected request %+v", req)
			}
			return lessonuc.Lesson{
				Content:  "lesson body",
				Level:    level.Beginner,
				Sections: []string{"Overview", "Practice"},
				Source: lessonuc.Source{
					KnowledgeBase: "mml", TotalFragments: 9, GroupCount: 2,
					Strategy: grouping.StrategyModel, Cached: true,
				},
				Tokens:    321,
				CreatedAt: fixedTime,
			}, nil
		},
	}}

	got, err := c.Lesson(context.Background(), "mml", LevelBeginner, "alarms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "lesson body" || got.Level != LevelBeginner || got.Tokens != 321 || !got.CreatedAt.Equal(fixedTime) {
		t.Errorf("unexpected lesson %+v", got)
	}
	if len(got.Sections) != 2 {
		t.Errorf("sections = %v", got.Sections)
	}
	wantSrc := Source{KnowledgeBase: "mml", Fragments: 9, Groups: 2, Strategy: "model", Cached: true}
	if got.Source != wantSrc {
		t.Errorf("source = %+v, want %+v", got.Source, wantSrc)
	}
}

func TestLesson_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid level", domain.ErrInvalidLevel, ErrInvalidLevel},
		{"quota", domain.ErrGenerationQuotaExceeded, ErrGenerationQuotaExceeded},
		{"generation", domain.ErrGenerationFailed, ErrGenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{lessons: &mockLessonUC{
				lessonFn: func(context.Context, lessonuc.Request) (lessonuc.Lesson, error) {
					return lessonuc.Lesson{}, tt.err
				},
			}}
			if _, err := c.Lesson(context.Background(), "mml", "expert", ""); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDoubt(t *testing.T) {
	c := &Client{lessons: &mockLessonUC{
		doubtFn: func(_ context.Context, req lessonuc.DoubtRequest) (lessonuc.Answer, error) {
			if req.Question != "what is LST?" || req.Lesson != "previous lesson" {
				t.Errorf("unexpected request %+v", req)
			}
			return lessonuc.Answer{
				Content:   "LST lists objects",
				Source:    lessonuc.Source{KnowledgeBase: "mml", TotalFragments: 3, GroupCount: 1},
				Tokens:    50,
				CreatedAt: fixedTime,
			}, nil
		},
	}}

	got, err := c.Doubt(context.Background(), "mml", "what is LST?", "previous lesson")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "LST lists objects" || got.Tokens != 50 || got.Source.Fragments != 3 {
		t.Errorf("unexpected answer %+v", got)
	}
}

func TestDoubt_InvalidRequest(t *testing.T) {
	c := &Client{lessons: &mockLessonUC{
		doubtFn: func(context.Context, lessonuc.DoubtRequest) (lessonuc.Answer, error) {
			return lessonuc.Answer{}, domain.ErrInvalidRequest
		},
	}}

	if _, err := c.Doubt(context.Background(), "mml", "", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestMentor(t *testing.T) {
	c := &Client{mentor: &mockMentorUC{
		answerFn: func(_ context.Context, req mentoruc.Request) (mentoruc.Response, error) {
			if req.Query != "how do I plan a swap?" {
				t.Errorf("query = %q", req.Query)
			}
			return mentoruc.Response{
				Content:        "start with a rollback plan",
				KnowledgeBases: []string{"mml", "alarm_handling"},
				Tokens:         77,
				CreatedAt:      fixedTime,
			}, nil
		},
	}}

	got, err := c.Mentor(context.Background(), "how do I plan a swap?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "start with a rollback plan" || len(got.KnowledgeBases) != 2 || got.Tokens != 77 {
		t.Errorf("unexpected mentor answer %+v", got)
	}
}

func TestAssess(t *testing.T) {
	c := &Client{assessor: &mockAssessUC{
		assessFn: func(_ context.Context, req assessmentuc.Request) (domassessment.Result, error) {
			if req.Scenario != "cell outage" || req.Response != "check alarms first" {
				t.Errorf("unexpected request %+v", req)
			}
			return domassessment.Result{
				ID:             "a-1",
				Feedback:       "solid",
				Score:          82,
				Strengths:      []string{"triage"},
				Improvements:   []string{"escalation"},
				TechnicalNotes: "use LST ALMAF",
				CreatedAt:      fixedTime,
			}, nil
		},
	}}

	got, err := c.Assess(context.Background(), "cell outage", "check alarms first")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a-1" || got.Score != 82 || got.Strengths[0] != "triage" || got.TechnicalNotes != "use LST ALMAF" {
		t.Errorf("unexpected assessment %+v", got)
	}
}

func TestAssess_Error(t *testing.T) {
	c := &Client{assessor: &mockAssessUC{
		assessFn: func(context.Context, assessmentuc.Request) (domassessment.Result, error) {
			return domassessment.Result{}, domain.ErrGenerationFailed
		},
	}}

	if _, err := c.Assess(context.Background(), "cell outage", ""); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			healthuc.CheckDatabase:   healthuc.CheckOK,
			healthuc.CheckGeneration: healthuc.CheckError,
		},
		KnowledgeBases: []string{"mml"},
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("status = %q", h.Status)
	}
	if h.Checks["database"] != "ok" || h.Checks["generation"] != "error" {
		t.Errorf("checks = %v", h.Checks)
	}
	if len(h.KnowledgeBases) != 1 {
		t.Errorf("knowledge bases = %v", h.KnowledgeBases)
	}
}

type stubUsage struct {
	report domusage.Report
}

func (s stubUsage) GetReport(context.Context, domusage.Period) domusage.Report { return s.report }

func TestUsage(t *testing.T) {
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	c := &Client{usageSvc: stubUsage{report: domusage.Report{
		Period:      domusage.PeriodDay,
		PeriodStart: start.UnixMilli(),
		PeriodEnd:   start.Add(24 * time.Hour).UnixMilli(),
		TokensUsed:  3000,
		Budget: domusage.Budget{
			TokensLimit:     10000,
			TokensRemaining: 7000,
			ResetsAt:        start.Add(24 * time.Hour).UnixMilli(),
		},
	}}}

	r := c.Usage(context.Background(), PeriodDay)
	if r.Period != PeriodDay || r.TokensUsed != 3000 {
		t.Errorf("unexpected report %+v", r)
	}
	if !r.PeriodStart.Equal(start) || !r.PeriodEnd.Equal(start.Add(24*time.Hour)) {
		t.Errorf("period = %v..%v", r.PeriodStart, r.PeriodEnd)
	}
	if r.Budget.TokensRemaining != 7000 || r.Budget.IsExhausted || !r.Budget.ResetsAt.Equal(start.Add(24*time.Hour)) {
		t.Errorf("unexpected budget %+v", r.Budget)
	}
}

func TestUsage_Total(t *testing.T) {
	c := &Client{usageSvc: stubUsage{report: domusage.Report{Period: domusage.PeriodTotal, TokensUsed: 42}}}

	r := c.Usage(context.Background(), PeriodTotal)
	if !r.PeriodStart.IsZero() || !r.PeriodEnd.IsZero() || !r.Budget.ResetsAt.IsZero() {
		t.Errorf("total period should have zero bounds: %+v", r)
	}
	if r.TokensUsed != 42 {
		t.Errorf("tokens used = %d", r.TokensUsed)
	}
}
