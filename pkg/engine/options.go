// Package engine selects the execution profile at build time. The default
// (dev) profile links the interpreter, the file watcher, and the reload
// coordinator; building with -tags dampen_release links neither and runs the
// generated program directly. The build tag is the only switch: there is no
// runtime mode flag.
package engine

import (
	"log"
	"time"

	"github.com/mattdef/dampen-sub004/pkg/instr"
	"github.com/mattdef/dampen-sub004/pkg/ir"
)

// Options configures a Run in either profile. Fields the active profile does
// not use are ignored, so an application can fill all of them unconditionally.
type Options struct {
	// Entry is the UI source file. Dev mode parses and watches it; release
	// mode ignores it.
	Entry string

	// Roots are the watched directories; empty defaults to the directory of
	// Entry. Dev only.
	Roots []string

	// Extensions filters watched files (e.g. ".ui.json"). Dev only.
	Extensions []string

	// Window is the watch debounce window; zero means the default. Dev only.
	Window time.Duration

	// Parser turns source files into documents. Dev only.
	Parser ir.Parser

	// NewModel builds a fresh model instance for startup and for each reload
	// cycle. Both profiles use it.
	NewModel func() any

	// Render receives every produced instruction tree.
	Render func(*instr.Instruction)

	// Build is the generated builder entry point. Release only.
	Build func(model any) *instr.Instruction

	// Logger receives engine progress; nil silences it.
	Logger *log.Logger
}
