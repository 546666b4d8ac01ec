package chi

import (
	"time"

	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type trainingRequest struct {
	Level         string `json:"level"`
	KnowledgeBase string `json:"knowledge_base"`
	Topic         string `json:"topic"`
}

type doubtRequest struct {
	KnowledgeBase string `json:"knowledge_base"`
	Question      string `json:"question"`
	Lesson        string `json:"lesson"`
}

type mentorRequest struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

type assessmentRequest struct {
	Scenario string `json:"scenario"`
	Response string `json:"response"`
}

type sourceResponse struct {
	KnowledgeBase  string `json:"knowledge_base"`
	TotalFragments int    `json:"total_fragments"`
	GroupCount     int    `json:"group_count"`
	Strategy       string `json:"strategy"`
	Cached         bool   `json:"cached"`
}

type lessonResponse struct {
	Content   string         `json:"content"`
	Level     string         `json:"level"`
	Sections  []string       `json:"sections"`
	Source    sourceResponse `json:"source"`
	Tokens    int            `json:"tokens"`
	CreatedAt time.Time      `json:"created_at"`
}

type answerResponse struct {
	Content   string         `json:"content"`
	Source    sourceResponse `json:"source"`
	Tokens    int            `json:"tokens"`
	CreatedAt time.Time      `json:"created_at"`
}

type mentorResponse struct {
	Content        string    `json:"content"`
	KnowledgeBases []string  `json:"knowledge_bases"`
	Tokens         int       `json:"tokens"`
	CreatedAt      time.Time `json:"created_at"`
}

type assessmentResponse struct {
	ID             string    `json:"id"`
	Feedback       string    `json:"feedback"`
	Score          int       `json:"score"`
	Strengths      []string  `json:"strengths"`
	Improvements   []string  `json:"improvements"`
	TechnicalNotes string    `json:"technical_notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type knowledgeBasesResponse struct {
	KnowledgeBases []string `json:"knowledge_bases"`
}

type contextResponse struct {
	KnowledgeBase  string `json:"knowledge_base"`
	Level          string `json:"level"`
	Topic          string `json:"topic,omitempty"`
	Text           string `json:"text"`
	TotalFragments int    `json:"total_fragments"`
	GroupCount     int    `json:"group_count"`
	Uncovered      int    `json:"uncovered"`
	Strategy       string `json:"strategy"`
	Cached         bool   `json:"cached"`
}

type usageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	TokensUsed    int64        `json:"tokens_used"`
	Budget        budgetStatus `json:"budget"`
}

type budgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

type healthResponse struct {
	Status         string            `json:"status"`
	Checks         map[string]string `json:"checks"`
	KnowledgeBases []string          `json:"knowledge_bases"`
}

func sourceToResponse(s lessonuc.Source) sourceResponse {
	return sourceResponse{
		KnowledgeBase:  s.KnowledgeBase,
		TotalFragments: s.TotalFragments,
		GroupCount:     s.GroupCount,
		Strategy:       string(s.Strategy),
		Cached:         s.Cached,
	}
}

func lessonToResponse(l lessonuc.Lesson) lessonResponse {
	return lessonResponse{
		Content:   l.Content,
		Level:     string(l.Level),
		Sections:  l.Sections,
		Source:    sourceToResponse(l.Source),
		Tokens:    l.Tokens,
		CreatedAt: l.CreatedAt,
	}
}

func answerToResponse(a lessonuc.Answer) answerResponse {
	return answerResponse{
		Content:   a.Content,
		Source:    sourceToResponse(a.Source),
		Tokens:    a.Tokens,
		CreatedAt: a.CreatedAt,
	}
}

func mentorToResponse(r mentoruc.Response) mentorResponse {
	kbs := r.KnowledgeBases
	if kbs == nil {
		kbs = []string{}
	}
	return mentorResponse{Content: r.Content, KnowledgeBases: kbs, Tokens: r.Tokens, CreatedAt: r.CreatedAt}
}

func assessmentToResponse(r domassessment.Result) assessmentResponse {
	return assessmentResponse{
		ID:             r.ID,
		Feedback:       r.Feedback,
		Score:          r.Score,
		Strengths:      nonNil(r.Strengths),
		Improvements:   nonNil(r.Improvements),
		TechnicalNotes: r.TechnicalNotes,
		CreatedAt:      r.CreatedAt,
	}
}

func contextToResponse(ac retrieval.AssembledContext) contextResponse {
	return contextResponse{
		KnowledgeBase:  ac.KnowledgeBase,
		Level:          ac.Level,
		Topic:          ac.Topic,
		Text:           ac.Text,
		TotalFragments: ac.TotalFragments,
		GroupCount:     ac.GroupCount,
		Uncovered:      ac.Uncovered,
		Strategy:       string(ac.Strategy),
		Cached:         ac.Cached,
	}
}

func usageToResponse(r domusage.Report) usageResponse {
	resp := usageResponse{
		Period:     string(r.Period),
		Provider:   r.Provider,
		TokensUsed: r.TokensUsed,
		Budget: budgetStatus{
			TokensLimit:     r.Budget.TokensLimit,
			TokensRemaining: r.Budget.TokensRemaining,
			IsExhausted:     r.Budget.Exhausted,
		},
	}
	if r.PeriodStart > 0 {
		start := time.UnixMilli(r.PeriodStart).UTC()
		end := time.UnixMilli(r.PeriodEnd).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if r.Budget.ResetsAt > 0 {
		resetsAt := time.UnixMilli(r.Budget.ResetsAt).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
