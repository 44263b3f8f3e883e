package views

import (
	"context"
	"strconv"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
)

// HistorySize is how many recent questions the history view keeps.
const HistorySize = 5

// Card is one headline stat.
type Card struct {
	Label string
	Value string
	Help  string
}

// Overview shows aggregate stats. A failed fetch shows all-zero cards.
type Overview struct {
	src    OverviewSource
	logger *zap.Logger

	mu    sync.RWMutex
	stats models.OverviewStats
}

// NewOverview returns an unloaded overview view.
func NewOverview(src OverviewSource, logger *zap.Logger) *Overview {
	return &Overview{src: src, logger: orNop(logger)}
}

// Load fetches stats once.
func (v *Overview) Load(ctx context.Context) {
	stats, err := v.src.Overview(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil || stats == nil {
		if err != nil {
			degrade(v.logger, "overview fetch", err)
		}
		v.stats = models.OverviewStats{}
		return
	}
	v.stats = *stats
}

// Stats returns the loaded stats, zero-valued when unavailable.
func (v *Overview) Stats() models.OverviewStats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stats
}

// Cards returns the four headline cards.
func (v *Overview) Cards() []Card {
	s := v.Stats()
	return []Card{
		{Label: "Documents", Value: strconv.Itoa(s.NumDocuments), Help: "Uploaded PDFs in the RAG corpus."},
		{Label: "Chunks", Value: strconv.Itoa(s.NumChunks), Help: "Snippets used for retrieval & grounding."},
		{Label: "Questions", Value: strconv.Itoa(s.NumQuestions), Help: "Queries answered by the RAG pipeline."},
		{Label: "% answers grounded", Value: strconv.Itoa(s.GroundedPercent()) + "%", Help: "Answers backed by at least one citation."},
	}
}

// QuestionsOverTime returns the time series, possibly empty.
func (v *Overview) QuestionsOverTime() []models.DayCount {
	return v.Stats().QuestionsOverTime
}

// ModeUsage returns the retrieval-mode histogram, possibly empty.
func (v *Overview) ModeUsage() []models.ModeCount {
	return v.Stats().ModeUsage()
}

// History shows the most recent questions.
type History struct {
	src    LogSource
	logger *zap.Logger

	mu   sync.RWMutex
	logs []models.LogEntry
}

// NewHistory returns an unloaded history view.
func NewHistory(src LogSource, logger *zap.Logger) *History {
	return &History{src: src, logger: orNop(logger)}
}

// Load fetches the log and keeps the first HistorySize entries (backend order is newest first).
func (v *History) Load(ctx context.Context) {
	logs, err := v.src.Logs(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		degrade(v.logger, "history fetch", err)
		v.logs = nil
		return
	}
	if len(logs) > HistorySize {
		logs = logs[:HistorySize]
	}
	v.logs = logs
}

// Entries returns the recent entries.
func (v *History) Entries() []models.LogEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.logs
}
