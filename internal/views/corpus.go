package views

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
)

// PreflightFunc checks a chosen file before it is sent. A non-nil error aborts
// the upload without a network call.
type PreflightFunc func(filename string, content []byte) error

// CorpusOption configures a Corpus.
type CorpusOption func(*Corpus)

// WithPreflight sets the upload check.
func WithPreflight(fn PreflightFunc) CorpusOption {
	return func(v *Corpus) { v.preflight = fn }
}

type pendingFile struct {
	name    string
	content []byte
}

// Corpus lists documents, uploads one file at a time, and tracks the row
// selected for the detail panel.
type Corpus struct {
	src       DocumentSource
	logger    *zap.Logger
	preflight PreflightFunc

	mu        sync.RWMutex
	docs      []models.Document
	selected  string
	pending   *pendingFile
	uploading bool
}

// NewCorpus returns an unloaded corpus view.
func NewCorpus(src DocumentSource, logger *zap.Logger, opts ...CorpusOption) *Corpus {
	v := &Corpus{src: src, logger: orNop(logger)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches the document list.
func (v *Corpus) Load(ctx context.Context) {
	docs, err := v.src.Documents(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		degrade(v.logger, "documents fetch", err)
		v.docs = nil
		return
	}
	v.docs = docs
}

// Documents returns the current list.
func (v *Corpus) Documents() []models.Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.docs
}

// Select marks docID as the detail-panel row. It makes no network call and
// reports whether the document is in the current list; an unknown ID clears
// the selection.
func (v *Corpus) Select(docID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, d := range v.docs {
		if d.DocID == docID {
			v.selected = docID
			return true
		}
	}
	v.selected = ""
	return false
}

// Selected returns the selected document, or nil.
func (v *Corpus) Selected() *models.Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.selected == "" {
		return nil
	}
	for i := range v.docs {
		if v.docs[i].DocID == v.selected {
			d := v.docs[i]
			return &d
		}
	}
	return nil
}

// Choose sets the file the next Upload sends, replacing any earlier choice.
func (v *Corpus) Choose(filename string, content []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if strings.TrimSpace(filename) == "" {
		v.pending = nil
		return
	}
	v.pending = &pendingFile{name: filename, content: content}
}

// Pending returns the chosen file name, if any.
func (v *Corpus) Pending() (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.pending == nil {
		return "", false
	}
	return v.pending.name, true
}

// Uploading reports whether an upload is in flight.
func (v *Corpus) Uploading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.uploading
}

// Upload sends the chosen file and, on success, re-fetches the list once and
// clears the choice. On failure the list and the choice are left as they were.
func (v *Corpus) Upload(ctx context.Context) (*models.UploadResult, error) {
	v.mu.Lock()
	if v.uploading {
		v.mu.Unlock()
		return nil, ErrBusy
	}
	if v.pending == nil {
		v.mu.Unlock()
		return nil, ErrNoFile
	}
	file := *v.pending
	v.uploading = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.uploading = false
		v.mu.Unlock()
	}()

	if v.preflight != nil {
		if err := v.preflight(file.name, file.content); err != nil {
			return nil, fmt.Errorf("upload %s: %w", file.name, err)
		}
	}
	res, err := v.src.UploadDocument(ctx, file.name, bytes.NewReader(file.content))
	if err != nil {
		v.logger.Warn("upload failed", zap.String("file", file.name), zap.Error(err))
		return nil, fmt.Errorf("upload %s: %w", file.name, err)
	}
	v.logger.Info("document uploaded", zap.String("file", file.name), zap.String("doc_id", res.DocID))

	docs, err := v.src.Documents(ctx)
	if err != nil {
		v.logger.Warn("refresh after upload failed", zap.String("file", file.name), zap.Error(err))
		return res, fmt.Errorf("refresh documents after uploading %s: %w", file.name, err)
	}
	v.mu.Lock()
	v.docs = docs
	if v.pending != nil && v.pending.name == file.name {
		v.pending = nil
	}
	v.mu.Unlock()
	return res, nil
}

// UploadFile chooses and uploads in one step.
func (v *Corpus) UploadFile(ctx context.Context, filename string, content []byte) (*models.UploadResult, error) {
	v.Choose(filename, content)
	return v.Upload(ctx)
}
