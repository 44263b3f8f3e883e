package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream(t *testing.T) {
	m := New()
	m.ObserveUpstream("GET", "/api/rag/logs", "200", 10*time.Millisecond)
	m.ObserveUpstream("GET", "/api/rag/logs", "200", 20*time.Millisecond)
	m.ObserveUpstream("GET", "/api/rag/logs", "500", time.Millisecond)
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("GET", "/api/rag/logs", "200")); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("GET", "/api/rag/logs", "500")); got != 1 {
		t.Errorf("500 count = %v, want 1", got)
	}
}

func TestObserveUpload(t *testing.T) {
	m := New()
	m.ObserveUpload("web", nil)
	m.ObserveUpload("web", errors.New("boom"))
	m.ObserveUpload("inbox", nil)
	if got := testutil.ToFloat64(m.Uploads.WithLabelValues("web", "error")); got != 1 {
		t.Errorf("web error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Uploads.WithLabelValues("inbox", "ok")); got != 1 {
		t.Errorf("inbox ok = %v, want 1", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/freshness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/freshness?question=x", nil))
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/freshness", "418")); got != 1 {
		t.Errorf("request count = %v, want 1", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ragscope_http_requests_total") {
		t.Error("exposition should include ragscope_http_requests_total")
	}
}
