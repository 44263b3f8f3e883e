package models

import (
	"errors"
	"fmt"
	"strings"
)

// Retrieval modes accepted by /api/rag/query.
const (
	ModeBM25   = "bm25"
	ModeDense  = "dense"
	ModeHybrid = "hybrid"
)

// Modes lists the retrieval modes in display order.
var Modes = []string{ModeBM25, ModeDense, ModeHybrid}

// Top-k bounds for a query.
const (
	MinTopK     = 1
	MaxTopK     = 10
	DefaultTopK = 5
)

var (
	// ErrEmptyQuestion is returned when the question is empty or whitespace only.
	ErrEmptyQuestion = errors.New("question cannot be empty")
	// ErrTopKRange is returned when top_k is outside [MinTopK, MaxTopK].
	ErrTopKRange = fmt.Errorf("top_k must be between %d and %d", MinTopK, MaxTopK)
	// ErrUnknownMode is returned for a mode not in Modes.
	ErrUnknownMode = errors.New("unknown retrieval mode")
)

// ValidMode reports whether mode is one of Modes.
func ValidMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ClampTopK bounds k to [MinTopK, MaxTopK].
func ClampTopK(k int) int {
	if k < MinTopK {
		return MinTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}

// QueryRequest is the body of POST /api/rag/query.
type QueryRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
	TopK     int    `json:"top_k"`
	Rerank   bool   `json:"rerank"`
}

// Validate rejects requests that must not reach the backend.
// The question is sent as typed; only its trimmed form is checked.
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return ErrEmptyQuestion
	}
	if q.TopK < MinTopK || q.TopK > MaxTopK {
		return fmt.Errorf("%w: got %d", ErrTopKRange, q.TopK)
	}
	if !ValidMode(q.Mode) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, q.Mode)
	}
	return nil
}

// Citation is a supporting chunk for an answer, in backend rank order.
type Citation struct {
	DocID      string  `json:"doc_id"`
	DocTitle   string  `json:"doc_title"`
	PageNumber int     `json:"page_number"`
	Snippet    string  `json:"snippet"`
	ScoreBM25  float64 `json:"score_bm25"`
	ScoreDense float64 `json:"score_dense"`
	ScoreFinal float64 `json:"score_final"`
}

// Timings are per-stage latencies in milliseconds.
type Timings struct {
	Retrieval  float64 `json:"retrieval"`
	Generation float64 `json:"generation"`
	Total      float64 `json:"total"`
}

// DefaultRefusalReason is shown when a refused answer carries no reason.
const DefaultRefusalReason = "Insufficient evidence in the corpus to answer safely."

// RAGResponse is the result of one question submission.
type RAGResponse struct {
	Answer         string     `json:"answer"`
	Answerability  string     `json:"answerability"`
	Refused        bool       `json:"refused"`
	Reason         *string    `json:"reason,omitempty"`
	Citations      []Citation `json:"citations"`
	RetrievalGraph Graph      `json:"retrieval_graph"`
	TimingsMS      Timings    `json:"timings_ms"`
}

// RefusalReason returns the backend's reason, or DefaultRefusalReason.
func (r *RAGResponse) RefusalReason() string {
	if r.Reason != nil && strings.TrimSpace(*r.Reason) != "" {
		return *r.Reason
	}
	return DefaultRefusalReason
}
