package scraper

import "sync"

// LoadTracker records which sub-request kinds of one load are still
// outstanding and fires a single notification once none remain.
type LoadTracker struct {
	mu      sync.Mutex
	pending map[RequestKind]struct{}
	fired   bool
	done    chan struct{}
	onDone  func()
}

// NewLoadTracker returns a tracker that calls onDone (if non-nil) exactly
// once per Begin, when the pending set drains.
func NewLoadTracker(onDone func()) *LoadTracker {
	done := make(chan struct{})
	close(done)
	return &LoadTracker{
		pending: make(map[RequestKind]struct{}),
		done:    done,
		onDone:  onDone,
		fired:   true,
	}
}

// Begin resets the tracker to wait for kinds. An empty set completes
// immediately.
func (t *LoadTracker) Begin(kinds ...RequestKind) {
	t.mu.Lock()
	t.pending = make(map[RequestKind]struct{}, len(kinds))
	for _, k := range kinds {
		t.pending[k] = struct{}{}
	}
	t.fired = false
	t.done = make(chan struct{})
	fire := len(t.pending) == 0
	if fire {
		t.fired = true
		close(t.done)
	}
	t.mu.Unlock()

	if fire && t.onDone != nil {
		t.onDone()
	}
}

// Complete removes k from the pending set. Completing a kind that is not
// pending is a no-op.
func (t *LoadTracker) Complete(k RequestKind) {
	t.mu.Lock()
	if _, ok := t.pending[k]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.pending, k)
	fire := len(t.pending) == 0 && !t.fired
	if fire {
		t.fired = true
		close(t.done)
	}
	t.mu.Unlock()

	if fire && t.onDone != nil {
		t.onDone()
	}
}

// IsDone reports whether every pending kind has completed.
func (t *LoadTracker) IsDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) == 0
}

// Pending returns the kinds still outstanding.
func (t *LoadTracker) Pending() []RequestKind {
	t.mu.Lock()
	defer t.mu.Unlock()
	kinds := make([]RequestKind, 0, len(t.pending))
	for k := range t.pending {
		kinds = append(kinds, k)
	}
	return kinds
}

// Done returns a channel closed when the current Begin cycle finishes.
func (t *LoadTracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
