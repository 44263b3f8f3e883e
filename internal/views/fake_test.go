package views

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend implements every source interface with overridable funcs and call counts.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	overview     func(ctx context.Context) (*models.OverviewStats, error)
	logs         func(ctx context.Context) ([]models.LogEntry, error)
	documents    func(ctx context.Context) ([]models.Document, error)
	upload       func(ctx context.Context, filename string, content []byte) (*models.UploadResult, error)
	query        func(ctx context.Context, req *models.QueryRequest) (*models.RAGResponse, error)
	questions    func(ctx context.Context) ([]models.QuestionCount, error)
	freshness    func(ctx context.Context, question string) (*models.FreshnessResponse, error)
	conceptGraph func(ctx context.Context) (*models.Graph, error)
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Overview(ctx context.Context) (*models.OverviewStats, error) {
	f.count("overview")
	if f.overview == nil {
		return nil, errBackend
	}
	return f.overview(ctx)
}

func (f *fakeBackend) Logs(ctx context.Context) ([]models.LogEntry, error) {
	f.count("logs")
	if f.logs == nil {
		return nil, errBackend
	}
	return f.logs(ctx)
}

func (f *fakeBackend) Documents(ctx context.Context) ([]models.Document, error) {
	f.count("documents")
	if f.documents == nil {
		return nil, errBackend
	}
	return f.documents(ctx)
}

func (f *fakeBackend) UploadDocument(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	f.count("upload")
	if f.upload == nil {
		return nil, errBackend
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return f.upload(ctx, filename, b)
}

func (f *fakeBackend) Query(ctx context.Context, req *models.QueryRequest) (*models.RAGResponse, error) {
	f.count("query")
	if f.query == nil {
		return nil, errBackend
	}
	return f.query(ctx, req)
}

func (f *fakeBackend) Questions(ctx context.Context) ([]models.QuestionCount, error) {
	f.count("questions")
	if f.questions == nil {
		return nil, errBackend
	}
	return f.questions(ctx)
}

func (f *fakeBackend) Freshness(ctx context.Context, question string) (*models.FreshnessResponse, error) {
	f.count("freshness")
	if f.freshness == nil {
		return nil, errBackend
	}
	return f.freshness(ctx, question)
}

func (f *fakeBackend) ConceptGraph(ctx context.Context) (*models.Graph, error) {
	f.count("concept_graph")
	if f.conceptGraph == nil {
		return nil, errBackend
	}
	return f.conceptGraph(ctx)
}

func logEntries(n int) []models.LogEntry {
	out := make([]models.LogEntry, n)
	for i := range out {
		out[i] = models.LogEntry{LogID: string(rune('a' + i)), Question: "q", Mode: models.ModeHybrid, TopK: 5}
	}
	return out
}
