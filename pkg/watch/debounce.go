// Package watch monitors source files on a background worker and delivers
// coalesced reload events to the coordinator's loop over a single channel.
// That channel is the only concurrency boundary in the core: the watcher owns
// no shared mutable state.
package watch

import (
	"sync"
	"time"
)

// DefaultWindow is the debounce window: raw notifications for the same path
// arriving within it collapse into one ReloadEvent.
const DefaultWindow = 100 * time.Millisecond

// ReloadEvent is one coalesced source change. It is produced by the watcher
// and consumed exactly once by the reload coordinator.
type ReloadEvent struct {
	Path       string
	DetectedAt time.Time
}

// Warning is a non-fatal watcher condition: a deleted file or an I/O error.
// The coordinator ignores the change instead of attempting a reload.
type Warning struct {
	Path   string
	Reason string
	Err    error
}

// Debouncer coalesces bursts of raw notifications per path. Each offered
// notification restarts that path's window; when the window elapses one
// ReloadEvent carrying the latest timestamp is emitted.
type Debouncer struct {
	window time.Duration
	out    chan ReloadEvent
	done   chan struct{}

	mu      sync.Mutex
	pending map[string]*pendingChange
	closed  bool
}

type pendingChange struct {
	timer *time.Timer
	at    time.Time
}

// NewDebouncer returns a debouncer with the given window, or DefaultWindow
// when non-positive.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		window:  window,
		out:     make(chan ReloadEvent, 16),
		done:    make(chan struct{}),
		pending: make(map[string]*pendingChange),
	}
}

// Offer records one raw notification for a path.
func (d *Debouncer) Offer(path string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if p, ok := d.pending[path]; ok {
		p.at = at
		p.timer.Reset(d.window)
		return
	}
	p := &pendingChange{at: at}
	p.timer = time.AfterFunc(d.window, func() { d.flush(path) })
	d.pending[path] = p
}

func (d *Debouncer) flush(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if ok {
		delete(d.pending, path)
	}
	closed := d.closed
	d.mu.Unlock()
	if !ok || closed {
		return
	}
	select {
	case d.out <- ReloadEvent{Path: path, DetectedAt: p.at}:
	case <-d.done:
	}
}

// Events is the ordered stream of coalesced reload events.
func (d *Debouncer) Events() <-chan ReloadEvent {
	return d.out
}

// Close stops all pending windows. No events are emitted afterwards; the
// events channel stays open so a blocked consumer simply sees no more items.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
	d.mu.Unlock()
	close(d.done)
}
