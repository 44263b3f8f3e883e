// Package server serves the ragscope dashboard over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hyperjump/ragscope/internal/config"
	"github.com/hyperjump/ragscope/internal/metrics"
	"github.com/hyperjump/ragscope/internal/render"
	"github.com/hyperjump/ragscope/internal/views"
	"go.uber.org/zap"
)

// Backend is everything the dashboard reads from and writes to the RAG API.
// *ragapi.Client implements it.
type Backend interface {
	views.OverviewSource
	views.LogSource
	views.DocumentSource
	views.QueryRunner
	views.FreshnessSource
	views.GraphSource
}

// Server is the dashboard HTTP server. Read-only pages mount fresh views on
// every request. The ask form and the corpus view live in a per-browser
// session so an outstanding request blocks re-submission and a failed one
// keeps what was shown.
type Server struct {
	backend   Backend
	renderer  *render.Renderer
	config    *config.Config
	metrics   *metrics.Metrics
	logger    *zap.Logger
	sessions  *sessions
	maxUpload int64
	server    *http.Server
}

// NewServer creates a server with the given dependencies. m may be nil.
func NewServer(
	backend Backend,
	renderer *render.Renderer,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		backend:   backend,
		renderer:  renderer,
		config:    cfg,
		metrics:   m,
		logger:    logger,
		sessions:  newSessions(sessionIdle),
		maxUpload: maxUploadBytes,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// QuestionDefaults maps the questions config onto the initial ask-form state.
func QuestionDefaults(cfg *config.Config) views.QuestionDefaults {
	return views.QuestionDefaults{
		Mode:   cfg.Questions.DefaultMode,
		TopK:   cfg.Questions.DefaultTopK,
		Rerank: cfg.Questions.RerankOrDefault(),
	}
}

// Handler returns the routed dashboard.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/", s.handleOverview)
	r.Group(func(r chi.Router) {
		r.Use(s.sessions.attach)
		r.Get("/corpus", s.handleCorpus)
		r.Post("/corpus", s.handleUpload)
		r.Get("/questions", s.handleQuestionForm)
		r.Post("/questions", s.handleAsk)
	})
	r.Get("/logs", s.handleLogs)
	r.Get("/logs/export.xlsx", s.handleLogsExport)
	r.Get("/freshness", s.handleFreshness)
	r.Get("/concept-graph", s.handleConceptGraph)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Start starts the HTTP server and blocks until it stops. After Stop it
// returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Starting dashboard", zap.String("addr", s.server.Addr), zap.String("api", s.config.API.BaseURL))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. It is safe to call before Start.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

const requestIDHeader = "X-Request-Id"

// requestID tags each request with an ID that middleware.Logger prints.
// An incoming X-Request-Id header is kept.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
