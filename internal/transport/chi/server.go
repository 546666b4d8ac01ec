package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/level"
	domusage "github.com/kailas-cloud/coach/internal/domain/usage"
	"github.com/kailas-cloud/coach/internal/logger"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	healthuc "github.com/kailas-cloud/coach/internal/usecase/health"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// Error codes returned in the error body.
const (
	CodeBadRequest       = "bad_request"
	CodeInvalidLevel     = "invalid_level"
	CodeUnavailable      = "knowledge_base_unavailable"
	CodeGenerationFailed = "generation_failed"
	CodeQuotaExceeded    = "generation_quota_exceeded"
	CodeUnauthorized     = "unauthorized"
	CodeInternalError    = "internal_error"
	CodeRequestCancelled = "request_cancelled"
)

const (
	maxRequestBodyBytes = 1 << 20
	defaultContextLevel = level.Beginner
	// nginx convention for a client that went away before the response
	clientClosedRequest = 499

	metricsPath = "/metrics"
	healthPath  = "/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Deps are the use cases served over HTTP.
type Deps struct {
	Lessons  Lessons
	Mentor   Mentor
	Assessor Assessor
	Contexts Contexts
	Usage    Usage
	Health   Health
}

// Server serves the coach HTTP API.
type Server struct {
	deps          Deps
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	return &Server{
		deps:   deps,
		logger: logger,
		errorHandlers: []errorHandler{
			exposedHandler(domain.ErrKnowledgeBaseUnavailable, http.StatusNotFound, CodeUnavailable),
			exposedHandler(domain.ErrInvalidLevel, http.StatusBadRequest, CodeInvalidLevel),
			exposedHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeBadRequest),
			sentinelHandler(domain.ErrGenerationQuotaExceeded, http.StatusTooManyRequests, CodeQuotaExceeded),
			sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, CodeGenerationFailed),
		},
	}
}

// Routes registers the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.Post("/training", s.Training)
	r.Post("/doubt", s.Doubt)
	r.Post("/mentor", s.Mentor)
	r.Post("/assessment", s.Assessment)
	r.Get("/knowledge-bases", s.ListKnowledgeBases)
	r.Get("/knowledge-bases/{kb}/context", s.GetContext)
	r.Get("/usage", s.GetUsage)
	r.Get(healthPath, s.HealthCheck)
	r.Get(metricsPath, s.Metrics)
}

// Training handles POST /training.
func (s *Server) Training(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	l, err := s.deps.Lessons.Lesson(r.Context(), lessonuc.Request{
		KnowledgeBase: req.KnowledgeBase,
		Level:         req.Level,
		Topic:         req.Topic,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessonToResponse(l))
}

// Doubt handles POST /doubt.
func (s *Server) Doubt(w http.ResponseWriter, r *http.Request) {
	var req doubtRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := s.deps.Lessons.Doubt(r.Context(), lessonuc.DoubtRequest{
		KnowledgeBase: req.KnowledgeBase,
		Question:      req.Question,
		Lesson:        req.Lesson,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerToResponse(a))
}

// Mentor handles POST /mentor.
func (s *Server) Mentor(w http.ResponseWriter, r *http.Request) {
	var req mentorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.deps.Mentor.Answer(r.Context(), mentoruc.Request{Query: req.Query, Context: req.Context})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mentorToResponse(resp))
}

// Assessment handles POST /assessment.
func (s *Server) Assessment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.deps.Assessor.Assess(r.Context(), assessmentuc.Request{Scenario: req.Scenario, Response: req.Response})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessmentToResponse(res))
}

// ListKnowledgeBases handles GET /knowledge-bases.
func (s *Server) ListKnowledgeBases(w http.ResponseWriter, r *http.Request) {
	kbs, err := s.deps.Contexts.KnowledgeBases(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, knowledgeBasesResponse{KnowledgeBases: nonNil(kbs)})
}

// GetContext handles GET /knowledge-bases/{kb}/context.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	kb := gochi.URLParam(r, "kb")
	lvl := defaultContextLevel
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := level.Parse(raw)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		lvl = parsed
	}

	ac, err := s.deps.Contexts.Context(r.Context(), retrieval.Request{
		KnowledgeBase: kb,
		Level:         string(lvl),
		Topic:         r.URL.Query().Get("topic"),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := ac.Err(); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contextToResponse(ac))
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "period must be day, month or total")
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.deps.Usage.GetReport(r.Context(), period)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:         string(report.Status),
		Checks:         checks,
		KnowledgeBases: nonNil(report.KnowledgeBases),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// exposedHandler matches client errors whose message is safe to return as is.
func exposedHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, clientMessage(err, sentinel))
		return true
	}
}

// sentinelHandler matches upstream errors and returns only the sentinel text.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// clientMessage strips operation prefixes added while the error travelled up.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i > 0 {
		return msg[i:]
	}
	return msg
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		log.Info("request cancelled", zap.Error(err))
		writeError(w, clientClosedRequest, CodeRequestCancelled, "request cancelled")
		return
	}
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
