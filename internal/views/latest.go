package views

import (
	"context"
	"sync"
)

// Ticket identifies one load started by Latest.Begin.
type Ticket struct {
	gen uint64
}

// Latest tracks the newest load keyed by a selection. Starting a load for a new
// key cancels the previous in-flight load, and only the newest load may apply
// its result. Late responses for superseded keys are dropped.
type Latest[K comparable] struct {
	mu     sync.Mutex
	gen    uint64
	key    K
	cancel context.CancelFunc
}

// Begin starts a load for key and returns the context the load must use.
// onBegin, if non-nil, runs with the tracker locked after the switch, so state
// tied to the selection changes in the same order as the loads begin.
func (l *Latest[K]) Begin(parent context.Context, key K, onBegin func()) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.key = key
	l.cancel = cancel
	if onBegin != nil {
		onBegin()
	}
	return ctx, Ticket{gen: l.gen}
}

// Apply runs fn if t is still the newest load and reports whether it ran.
// fn runs with the tracker locked, so a newer Begin cannot interleave.
func (l *Latest[K]) Apply(t Ticket, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.gen != l.gen {
		return false
	}
	fn()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return true
}

// Key returns the key of the newest load.
func (l *Latest[K]) Key() K {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}

// Stop cancels any in-flight load; its result will not be applied.
func (l *Latest[K]) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
