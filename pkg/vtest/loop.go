package vtest

import (
	"sync"
	"testing"
	"time"
)

// DefaultWait bounds how long WaitAndRun waits for callbacks.
const DefaultWait = 2 * time.Second

// Loop is a manual event loop. Dispatch may be called from any goroutine;
// callbacks only run when the test calls RunPending or WaitAndRun.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	notify  chan struct{}
}

// NewLoop creates an empty Loop.
func NewLoop() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Dispatch queues fn.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// RunPending runs every queued callback in order and returns how many ran.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// WaitAndRun waits until at least n callbacks are queued, then runs all
// queued callbacks. The test fails if they do not arrive within DefaultWait.
func (l *Loop) WaitAndRun(t testing.TB, n int) {
	t.Helper()

	deadline := time.NewTimer(DefaultWait)
	defer deadline.Stop()

	for l.Pending() < n {
		select {
		case <-l.notify:
		case <-deadline.C:
			t.Fatalf("timed out waiting for %d dispatched callbacks, have %d", n, l.Pending())
			return
		}
	}
	l.RunPending()
}
