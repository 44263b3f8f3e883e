package views

import (
	"context"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LogsSource is what the logs view reads: the full log plus the stats header.
type LogsSource interface {
	LogSource
	OverviewSource
}

// Logs shows the full question log with an evaluation summary.
// The two fetches are independent; one failing does not blank the other.
type Logs struct {
	src    LogsSource
	logger *zap.Logger

	mu    sync.RWMutex
	logs  []models.LogEntry
	stats *models.OverviewStats
}

// NewLogs returns an unloaded logs view.
func NewLogs(src LogsSource, logger *zap.Logger) *Logs {
	return &Logs{src: src, logger: orNop(logger)}
}

// Load fetches the log and the stats concurrently.
func (v *Logs) Load(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		logs, err := v.src.Logs(ctx)
		if err != nil {
			degrade(v.logger, "logs fetch", err)
			logs = nil
		}
		v.mu.Lock()
		v.logs = logs
		v.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		stats, err := v.src.Overview(ctx)
		if err != nil {
			degrade(v.logger, "logs stats fetch", err)
			stats = nil
		}
		v.mu.Lock()
		v.stats = stats
		v.mu.Unlock()
		return nil
	})
	_ = g.Wait()
}

// Entries returns every log entry in backend order.
func (v *Logs) Entries() []models.LogEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.logs
}

// NumQuestions is the stats header question count, 0 when stats are unavailable.
func (v *Logs) NumQuestions() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.stats == nil {
		return 0
	}
	return v.stats.NumQuestions
}

// GroundedPercent is the stats header grounded rate, 0 when stats are unavailable.
func (v *Logs) GroundedPercent() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.stats == nil {
		return 0
	}
	return v.stats.GroundedPercent()
}
