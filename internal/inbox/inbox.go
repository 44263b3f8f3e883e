// Package inbox uploads PDFs dropped into watched directories to the RAG backend.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperjump/ragscope/internal/fileid"
	"github.com/hyperjump/ragscope/internal/metrics"
	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MetricsSource labels inbox uploads in ragscope_corpus_uploads_total.
const MetricsSource = "inbox"

// ErrDuplicate is returned by Handle for content that was already uploaded.
var ErrDuplicate = errors.New("already uploaded")

// Uploader sends one file to the backend. *views.Corpus satisfies it.
type Uploader interface {
	UploadFile(ctx context.Context, filename string, content []byte) (*models.UploadResult, error)
}

// Options configures an Inbox.
type Options struct {
	Directories []string
	Extensions  []string
	Recursive   bool
	// UploadsPerSecond limits upload rate; zero or less means unlimited.
	UploadsPerSecond float64
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
	WatcherOptions   []WatcherOption
}

// Inbox uploads each distinct file once. Uploads run one at a time.
type Inbox struct {
	up      Uploader
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger

	mu   sync.Mutex // serializes Handle
	seen map[string]string
}

// New returns an inbox that uploads through up.
func New(up Uploader, opts Options) *Inbox {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.UploadsPerSecond > 0 {
		limit = rate.Limit(opts.UploadsPerSecond)
	}
	return &Inbox{
		up:      up,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		seen:    make(map[string]string),
	}
}

// Handle uploads the file at path unless identical content was already
// uploaded. A failed upload is not remembered, so the file is retried the
// next time it changes or the inbox restarts.
func (in *Inbox) Handle(ctx context.Context, path string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	id := fileid.ContentID(content)
	if prev, ok := in.seen[id]; ok {
		in.logger.Debug("inbox skipping duplicate", zap.String("path", path), zap.String("first_seen", prev))
		return ErrDuplicate
	}
	if err := in.limiter.Wait(ctx); err != nil {
		return err
	}

	name := filepath.Base(path)
	res, err := in.up.UploadFile(ctx, name, content)
	if in.opts.Metrics != nil {
		in.opts.Metrics.ObserveUpload(MetricsSource, err)
	}
	if err != nil {
		in.logger.Warn("inbox upload failed", zap.String("path", path), zap.Error(err))
		return err
	}
	in.seen[id] = path
	in.logger.Info("inbox uploaded", zap.String("path", path), zap.String("doc_id", res.DocID))
	return nil
}

// Run uploads the files already in the directories, then watches for new
// ones until ctx is cancelled.
func (in *Inbox) Run(ctx context.Context) error {
	if len(in.opts.Directories) == 0 {
		return errors.New("inbox: no directories configured")
	}
	onFile := func(path string) {
		if err := in.Handle(ctx, path); err != nil && !errors.Is(err, ErrDuplicate) && ctx.Err() == nil {
			in.logger.Debug("inbox file not uploaded", zap.String("path", path), zap.Error(err))
		}
	}
	opts := append([]WatcherOption{WithLogger(in.logger)}, in.opts.WatcherOptions...)
	w := NewWatcher(in.opts.Directories, in.opts.Extensions, in.opts.Recursive, onFile, opts...)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("inbox: watch: %w", err)
	}
	defer w.Stop()
	in.logger.Info("inbox watching", zap.Strings("directories", w.Directories()))
	w.SyncExisting()
	<-ctx.Done()
	return nil
}

// Uploaded returns how many distinct files have been uploaded.
func (in *Inbox) Uploaded() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.seen)
}
