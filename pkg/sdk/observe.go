package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes used as the status label.
const (
	statusOK               = "ok"
	statusUnavailable      = "kb_unavailable"
	statusInvalid          = "invalid_request"
	statusQuotaExceeded    = "quota_exceeded"
	statusGenerationFailed = "generation_failed"
	statusCanceled         = "canceled"
	statusError            = "error"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	tokens     *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coach",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation, knowledge base and outcome.",
		}, []string{"operation", "knowledge_base", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coach",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call duration in seconds. Grouping and generation dominate the tail.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"operation"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coach",
			Subsystem: "sdk",
			Name:      "generation_tokens_total",
			Help:      "Tokens spent by lessons, doubts and mentor answers.",
		}, []string{"operation", "knowledge_base"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.tokens); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("coach: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("coach: register metric: %w", err)
	}
	return nil
}

// call describes one finished SDK call.
type call struct {
	op     string
	kb     string // empty for calls spanning several knowledge bases
	tokens int
}

// statusOf maps an SDK error to its status label.
func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, ErrKnowledgeBaseUnavailable):
		return statusUnavailable
	case errors.Is(err, ErrInvalidLevel), errors.Is(err, ErrInvalidRequest):
		return statusInvalid
	case errors.Is(err, ErrGenerationQuotaExceeded):
		return statusQuotaExceeded
	case errors.Is(err, ErrGenerationFailed):
		return statusGenerationFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return statusCanceled
	default:
		return statusError
	}
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(c call, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	// Names that did not resolve to a knowledge base stay out of the label set.
	kb := strings.ToLower(strings.TrimSpace(c.kb))
	if status == statusUnavailable || status == statusInvalid {
		kb = ""
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(c.op, kb, status).Inc()
		o.metrics.duration.WithLabelValues(c.op).Observe(dur.Seconds())
		if c.tokens > 0 {
			o.metrics.tokens.WithLabelValues(c.op, kb).Add(float64(c.tokens))
		}
	}

	if o.logger != nil {
		attrs := []any{"op", c.op, "duration", dur, "status", status}
		if kb != "" {
			attrs = append(attrs, "knowledge_base", kb)
		}
		if c.tokens > 0 {
			attrs = append(attrs, "tokens", c.tokens)
		}
		if err != nil {
			o.logger.Warn("operation failed", append(attrs, "error", err)...)
		} else {
			o.logger.Debug("operation completed", attrs...)
		}
	}
}
