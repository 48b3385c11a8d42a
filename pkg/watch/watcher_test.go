package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := New(Config{
		Roots:      []string{dir},
		Extensions: []string{".ui.json"},
		Window:     20 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	w.Start()
	return w
}

func awaitEvent(t *testing.T, w *Watcher, timeout time.Duration) (ReloadEvent, bool) {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return ReloadEvent{}, false
	}
}

func TestWatcherEmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ui.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w := newTestWatcher(t, dir)
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1"}`), 0o644))

	ev, ok := awaitEvent(t, w, 2*time.Second)
	require.True(t, ok, "no reload event for a relevant write")
	assert.Equal(t, path, ev.Path)
	assert.False(t, ev.DetectedAt.IsZero())
}

func TestWatcherIgnoresIrrelevantExtensions(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	_, ok := awaitEvent(t, w, 300*time.Millisecond)
	assert.False(t, ok, "irrelevant file produced a reload event")
}

func TestWatcherWarnsOnRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ui.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w := newTestWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	select {
	case warning := <-w.Warnings():
		assert.Equal(t, path, warning.Path)
		assert.Equal(t, "file removed", warning.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no warning for a removed file")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w := newTestWatcher(t, t.TempDir())
	assert.NoError(t, w.Close())
	// The test cleanup closes again; an explicit second close must not panic.
	assert.NoError(t, w.Close())
}

func TestRelevant(t *testing.T) {
	w := &Watcher{exts: []string{".ui.json"}}
	assert.True(t, w.relevant("/p/app.ui.json"))
	assert.True(t, w.relevant("/p/APP.UI.JSON"))
	assert.False(t, w.relevant("/p/app.go"))

	all := &Watcher{}
	assert.True(t, all.relevant("/p/anything"))
}
