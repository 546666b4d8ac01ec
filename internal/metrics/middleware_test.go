package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMain(m *testing.M) {
	RegisterHTTPMetrics()
	RegisterGenerationMetrics()
	os.Exit(m.Run())
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/knowledge-bases/{kb}/context", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("context"))
	})

	req := httptest.NewRequest(http.MethodGet, "/knowledge-bases/mml/context", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/knowledge-bases/{kb}/context", "200"))
	if val < 1 {
		t.Errorf("expected http_requests_total >= 1 for route pattern, got %f", val)
	}
	bytes := testutil.ToFloat64(httpResponseBytes.WithLabelValues("/knowledge-bases/{kb}/context"))
	if bytes < float64(len("context")) {
		t.Errorf("expected response bytes >= %d, got %f", len("context"), bytes)
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/training", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Post("/assessment", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	tests := []struct {
		path   string
		status string
	}{
		{"/training", "502"},
		{"/assessment", "400"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", tc.path, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.status, val)
			}
		})
	}
}

func TestMiddleware_Skip(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("/health"))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200"))

	if after != before {
		t.Errorf("skipped path was recorded: before=%f after=%f", before, after)
	}
}

func TestNormalizePath(t *testing.T) {
	if normalizePath("") != "unknown" {
		t.Error("empty pattern should normalize to unknown")
	}
	if normalizePath("/mentor") != "/mentor" {
		t.Error("pattern should be kept")
	}
}

func TestGroupingCounters(t *testing.T) {
	GroupingTotal.WithLabelValues("mml", "fallback").Inc()
	if v := testutil.ToFloat64(GroupingTotal.WithLabelValues("mml", "fallback")); v < 1 {
		t.Errorf("expected grouping_total >= 1, got %f", v)
	}
}
