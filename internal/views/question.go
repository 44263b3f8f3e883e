package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
)

// QuestionDefaults are the initial form values.
type QuestionDefaults struct {
	Mode   string
	TopK   int
	Rerank bool
}

// DefaultQuestionDefaults matches the dashboard's initial form: hybrid, k=5, rerank on.
var DefaultQuestionDefaults = QuestionDefaults{Mode: models.ModeHybrid, TopK: models.DefaultTopK, Rerank: true}

// QuestionForm holds the ask form and the last successful answer.
type QuestionForm struct {
	src    QueryRunner
	logger *zap.Logger

	mu       sync.RWMutex
	question string
	mode     string
	topK     int
	rerank   bool
	busy     bool
	response *models.RAGResponse
}

// NewQuestionForm returns a form initialised from d. Invalid defaults fall back
// to DefaultQuestionDefaults field by field.
func NewQuestionForm(src QueryRunner, logger *zap.Logger, d QuestionDefaults) *QuestionForm {
	if !models.ValidMode(d.Mode) {
		d.Mode = DefaultQuestionDefaults.Mode
	}
	if d.TopK == 0 {
		d.TopK = DefaultQuestionDefaults.TopK
	}
	return &QuestionForm{
		src:    src,
		logger: orNop(logger),
		mode:   d.Mode,
		topK:   models.ClampTopK(d.TopK),
		rerank: d.Rerank,
	}
}

// SetQuestion sets the question text as typed.
func (f *QuestionForm) SetQuestion(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.question = q
}

// SetMode sets the retrieval mode; unknown modes are rejected and leave the form unchanged.
func (f *QuestionForm) SetMode(mode string) error {
	if !models.ValidMode(mode) {
		return fmt.Errorf("%w: %q", models.ErrUnknownMode, mode)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
	return nil
}

// SetTopK sets top-k, clamped to [models.MinTopK, models.MaxTopK], and returns the stored value.
func (f *QuestionForm) SetTopK(k int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topK = models.ClampTopK(k)
	return f.topK
}

// SetRerank sets the rerank flag.
func (f *QuestionForm) SetRerank(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rerank = on
}

// Request returns the request the form would submit.
func (f *QuestionForm) Request() models.QueryRequest {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return models.QueryRequest{Question: f.question, Mode: f.mode, TopK: f.topK, Rerank: f.rerank}
}

// Busy reports whether a submission is outstanding.
func (f *QuestionForm) Busy() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.busy
}

// Response returns the last successful answer, or nil.
func (f *QuestionForm) Response() *models.RAGResponse {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.response
}

// Submit validates the form and posts it. Invalid input and a submission while
// busy return an error without a network call. On success the previous answer is
// replaced wholesale; on failure it is kept.
func (f *QuestionForm) Submit(ctx context.Context) (*models.RAGResponse, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	req := models.QueryRequest{Question: f.question, Mode: f.mode, TopK: f.topK, Rerank: f.rerank}
	if err := req.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.busy = true
	f.mu.Unlock()

	resp, err := f.src.Query(ctx, &req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		f.logger.Warn("query failed", zap.String("mode", req.Mode), zap.Int("top_k", req.TopK), zap.Error(err))
		return nil, fmt.Errorf("query: %w", err)
	}
	f.response = resp
	return resp, nil
}
