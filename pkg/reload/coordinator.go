// Package reload drives the dev-mode cycle: a source change is parsed, the
// live model state is captured and carried into a fresh model, the new
// document is swapped in atomically, and the UI is re-rendered. A parse
// failure keeps the last known-good document on screen behind an error
// overlay; the session never dies on a bad edit.
package reload

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mattdef/dampen-sub004/pkg/instr"
	"github.com/mattdef/dampen-sub004/pkg/interp"
	"github.com/mattdef/dampen-sub004/pkg/ir"
	"github.com/mattdef/dampen-sub004/pkg/state"
	"github.com/mattdef/dampen-sub004/pkg/watch"
)

// State is the coordinator's current phase. Events queue while a cycle is in
// flight; the coordinator processes one change at a time.
type State int

const (
	StateWatching State = iota
	StateParsing
	StateRestoring
	StateErrorDisplay
)

func (s State) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StateParsing:
		return "parsing"
	case StateRestoring:
		return "restoring"
	case StateErrorDisplay:
		return "error-display"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config wires the coordinator's collaborators.
type Config struct {
	// Parser turns changed source files back into documents.
	Parser ir.Parser

	// NewModel builds a fresh model instance (a pointer to the app's model
	// struct) for each reload cycle. Snapshot state is restored into it.
	NewModel func() any

	// Render receives the instruction tree after every successful cycle.
	Render func(*instr.Instruction)

	// Interp evaluates the swapped-in document. Its retention cache is reset
	// on every swap.
	Interp *interp.Interpreter

	// OnRestore, when set, observes each cycle's restore report.
	OnRestore func(*state.RestoreReport)

	// OnApply observes each successfully applied reload.
	OnApply func(path string)

	// OnParseError observes each parse failure shown on the overlay.
	OnParseError func(*ir.ParseError)

	// Logger receives cycle progress and warnings. Nil silences it.
	Logger *log.Logger

	// ReadFile loads changed sources; nil means os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// Coordinator owns the live document and model and applies reload cycles to
// them. All methods run on the caller's loop; the watcher channel is the only
// way concurrent activity reaches it.
type Coordinator struct {
	cfg     Config
	doc     *ir.Document
	model   any
	state   State
	overlay Overlay
}

// New returns a coordinator in the watching state with no document adopted.
func New(cfg Config) *Coordinator {
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	return &Coordinator{cfg: cfg, state: StateWatching}
}

// Adopt installs the initial document and model and renders once.
func (c *Coordinator) Adopt(doc *ir.Document, model any) {
	c.doc = doc
	c.model = model
	c.render()
}

// Run consumes watcher streams until the context is canceled or the event
// channel closes. Warnings are logged and otherwise ignored; the current
// document stays live.
func (c *Coordinator) Run(ctx context.Context, events <-chan watch.ReloadEvent, warnings <-chan watch.Warning) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Process(ev)
		case warning, ok := <-warnings:
			if !ok {
				warnings = nil
				continue
			}
			c.logf("watch: %s (%s)", warning.Reason, warning.Path)
		}
	}
}

// Process runs one full reload cycle for a coalesced change.
func (c *Coordinator) Process(ev watch.ReloadEvent) {
	c.state = StateParsing
	c.logf("reload: parsing %s", ev.Path)

	src, err := c.cfg.ReadFile(ev.Path)
	if err != nil {
		// Treat an unreadable file like a watcher warning: keep what we have.
		c.logf("reload: read %s: %v", ev.Path, err)
		c.state = c.settledState()
		return
	}

	doc, perr := c.cfg.Parser.Parse(ev.Path, src)
	if perr != nil {
		c.overlay.Show(perr)
		c.state = StateErrorDisplay
		c.logf("reload: %v", perr)
		if c.cfg.OnParseError != nil {
			c.cfg.OnParseError(perr)
		}
		// Last known-good document and untouched model stay live.
		c.render()
		return
	}

	c.state = StateRestoring
	snap := state.Capture(c.model)
	next := c.cfg.NewModel()
	report := state.Restore(snap, next)
	if c.cfg.OnRestore != nil {
		c.cfg.OnRestore(report)
	}
	for _, d := range report.Dropped {
		c.logf("reload: dropped state field %s", d)
	}
	for _, w := range report.Warnings {
		c.logf("reload: state field %s: %s", w.Field, w.Reason)
	}

	c.doc = doc
	c.model = next
	if c.cfg.Interp != nil {
		c.cfg.Interp.Reset()
	}
	c.overlay.Clear()
	c.state = StateWatching
	c.render()
	c.logf("reload: %s applied", ev.Path)
	if c.cfg.OnApply != nil {
		c.cfg.OnApply(ev.Path)
	}
}

// settledState is where the coordinator returns to between cycles.
func (c *Coordinator) settledState() State {
	if c.overlay.Active() {
		return StateErrorDisplay
	}
	return StateWatching
}

func (c *Coordinator) render() {
	if c.cfg.Render == nil || c.cfg.Interp == nil || c.doc == nil {
		return
	}
	c.cfg.Render(c.cfg.Interp.Evaluate(c.doc, c.model))
}

// Document returns the live document.
func (c *Coordinator) Document() *ir.Document {
	return c.doc
}

// Model returns the live model instance.
func (c *Coordinator) Model() any {
	return c.model
}

// State returns the coordinator's current phase.
func (c *Coordinator) State() State {
	return c.state
}

// Overlay exposes the error overlay for display layers.
func (c *Coordinator) Overlay() *Overlay {
	return &c.overlay
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, args...)
	}
}
