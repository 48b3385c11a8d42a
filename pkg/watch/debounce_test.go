package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, d *Debouncer, wait time.Duration) []ReloadEvent {
	t.Helper()
	var events []ReloadEvent
	deadline := time.After(wait)
	for {
		select {
		case ev := <-d.Events():
			events = append(events, ev)
		case <-deadline:
			return events
		}
	}
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Close()

	now := time.Now()
	for i := 0; i < 5; i++ {
		d.Offer("app.ui.json", now.Add(time.Duration(i)*time.Millisecond))
	}

	events := collect(t, d, 150*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, "app.ui.json", events[0].Path)
	// The coalesced event carries the latest timestamp of the burst.
	assert.Equal(t, now.Add(4*time.Millisecond), events[0].DetectedAt)
}

func TestDebouncerSeparatesSpacedChanges(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Close()

	d.Offer("app.ui.json", time.Now())
	time.Sleep(60 * time.Millisecond)
	d.Offer("app.ui.json", time.Now())

	events := collect(t, d, 120*time.Millisecond)
	assert.Len(t, events, 2)
}

func TestDebouncerKeepsPathsIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Close()

	d.Offer("a.ui.json", time.Now())
	d.Offer("b.ui.json", time.Now())

	events := collect(t, d, 120*time.Millisecond)
	require.Len(t, events, 2)
	paths := map[string]bool{events[0].Path: true, events[1].Path: true}
	assert.True(t, paths["a.ui.json"] && paths["b.ui.json"])
}

func TestDebouncerCloseStopsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	d.Offer("a.ui.json", time.Now())
	d.Close()

	events := collect(t, d, 120*time.Millisecond)
	assert.Empty(t, events)

	// Offers after Close are ignored, and Close is idempotent.
	d.Offer("b.ui.json", time.Now())
	d.Close()
}

func TestDefaultWindow(t *testing.T) {
	d := NewDebouncer(0)
	defer d.Close()
	assert.Equal(t, DefaultWindow, d.window)
}
