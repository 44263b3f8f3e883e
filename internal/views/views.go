// Package views holds the state of each dashboard view for one mount: what it
// fetched, what is selected, and how it degrades when the backend fails.
//
// Loads never return errors. A failed fetch is logged and the view falls back
// to its neutral state (empty list, nil object, zero stats). Only the two
// mutations, Corpus.Upload and QuestionForm.Submit, return errors, which
// callers surface as a blocking notice.
package views

import (
	"context"
	"errors"
	"io"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when a mutation is already in flight for the view.
	ErrBusy = errors.New("request already in progress")
	// ErrNoFile is returned when an upload is attempted without a chosen file.
	ErrNoFile = errors.New("no file selected")
)

// OverviewSource fetches aggregate stats.
type OverviewSource interface {
	Overview(ctx context.Context) (*models.OverviewStats, error)
}

// LogSource fetches the question log.
type LogSource interface {
	Logs(ctx context.Context) ([]models.LogEntry, error)
}

// DocumentSource lists and uploads corpus documents.
type DocumentSource interface {
	Documents(ctx context.Context) ([]models.Document, error)
	UploadDocument(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error)
}

// QueryRunner submits questions.
type QueryRunner interface {
	Query(ctx context.Context, req *models.QueryRequest) (*models.RAGResponse, error)
}

// FreshnessSource lists past questions and their snapshot timelines.
type FreshnessSource interface {
	Questions(ctx context.Context) ([]models.QuestionCount, error)
	Freshness(ctx context.Context, question string) (*models.FreshnessResponse, error)
}

// GraphSource fetches the concept graph.
type GraphSource interface {
	ConceptGraph(ctx context.Context) (*models.Graph, error)
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// degrade logs a load failure. Cancellation is expected when a load is superseded.
func degrade(logger *zap.Logger, what string, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Debug(what+" cancelled", zap.Error(err))
		return
	}
	logger.Warn(what+" failed; showing empty state", zap.Error(err))
}
