package views

import (
	"context"
	"sync"

	"github.com/hyperjump/ragscope/internal/models"
	"go.uber.org/zap"
)

// Freshness shows how answers to one repeated question changed over time.
// It loads the distinct questions first, then the timeline of the selected one.
type Freshness struct {
	src    FreshnessSource
	logger *zap.Logger
	latest Latest[string]

	mu        sync.RWMutex
	questions []models.QuestionCount
	timeline  *models.FreshnessResponse
}

// NewFreshness returns an unloaded freshness view.
func NewFreshness(src FreshnessSource, logger *zap.Logger) *Freshness {
	return &Freshness{src: src, logger: orNop(logger)}
}

// Load fetches the question list and selects the first question.
func (v *Freshness) Load(ctx context.Context) {
	v.LoadSelecting(ctx, "")
}

// LoadSelecting fetches the question list, then selects preferred when it is
// non-empty, or the first listed question otherwise. The timeline fetch is only
// issued once the list has resolved and a selection exists.
func (v *Freshness) LoadSelecting(ctx context.Context, preferred string) {
	qs, err := v.src.Questions(ctx)
	if err != nil {
		degrade(v.logger, "questions fetch", err)
		qs = nil
	}
	v.mu.Lock()
	v.questions = qs
	v.mu.Unlock()

	selection := preferred
	if selection == "" && len(qs) > 0 {
		selection = qs[0].Question
	}
	v.Select(ctx, selection)
}

// Select changes the selected question and fetches its timeline. Any in-flight
// fetch for an earlier selection is cancelled and its result discarded. The
// timeline is cleared while loading and on failure, so it never shows a
// different question than the one selected.
func (v *Freshness) Select(ctx context.Context, question string) {
	loadCtx, ticket := v.latest.Begin(ctx, question, func() {
		v.mu.Lock()
		v.timeline = nil
		v.mu.Unlock()
	})
	if question == "" {
		v.latest.Apply(ticket, func() {})
		return
	}

	resp, err := v.src.Freshness(loadCtx, question)
	applied := v.latest.Apply(ticket, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if err != nil {
			degrade(v.logger, "freshness fetch", err)
			v.timeline = nil
			return
		}
		v.timeline = resp
	})
	if !applied {
		v.logger.Debug("discarded stale freshness response", zap.String("question", question))
	}
}

// Questions returns the distinct questions, empty when the list failed to load.
func (v *Freshness) Questions() []models.QuestionCount {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.questions
}

// Selected returns the current selection.
func (v *Freshness) Selected() string {
	return v.latest.Key()
}

// Timeline returns the timeline for the current selection, or nil.
func (v *Freshness) Timeline() *models.FreshnessResponse {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.timeline
}

// Close cancels any in-flight timeline fetch. Call it when the view is unmounted.
func (v *Freshness) Close() {
	v.latest.Stop()
}
