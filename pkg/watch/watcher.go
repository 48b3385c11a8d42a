package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config selects what the watcher observes.
type Config struct {
	// Roots are the directories watched recursively. Hidden directories are
	// skipped.
	Roots []string

	// Extensions filters relevant files (with leading dot, e.g. ".ui.json").
	// Empty means every file is relevant.
	Extensions []string

	// Window is the debounce window; zero means DefaultWindow.
	Window time.Duration
}

// Watcher subscribes to filesystem notifications for a set of roots and
// exposes one ordered stream of debounced ReloadEvents plus a stream of
// non-fatal warnings. It runs on its own goroutine; Close tears it down.
type Watcher struct {
	fs        *fsnotify.Watcher
	deb       *Debouncer
	warnings  chan Warning
	exts      []string
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a watcher over the configured roots.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		deb:      NewDebouncer(cfg.Window),
		warnings: make(chan Warning, 16),
		exts:     cfg.Extensions,
		done:     make(chan struct{}),
	}
	for _, root := range cfg.Roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.fs.Add(path)
		}
		return nil
	})
}

// Start launches the background worker.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.warn(Warning{Reason: "watcher error", Err: err})
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if w.relevant(event.Name) {
			w.warn(Warning{Path: event.Name, Reason: "file removed"})
		}
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}
	if event.Op.Has(fsnotify.Create) {
		// New subdirectories need their own watch.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}
	if w.relevant(event.Name) {
		w.deb.Offer(event.Name, time.Now())
	}
}

func (w *Watcher) relevant(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range w.exts {
		if strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func (w *Watcher) warn(warning Warning) {
	select {
	case w.warnings <- warning:
	default:
		// A stalled consumer drops warnings rather than blocking the worker.
	}
}

// Events is the coalesced reload stream, in arrival order.
func (w *Watcher) Events() <-chan ReloadEvent {
	return w.deb.Events()
}

// Warnings is the non-fatal condition stream.
func (w *Watcher) Warnings() <-chan Warning {
	return w.warnings
}

// Close tears the background worker down. It is called before the coordinator
// shuts down so no further events are produced mid-cycle, and is safe to call
// more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.deb.Close()
		err = w.fs.Close()
	})
	return err
}
