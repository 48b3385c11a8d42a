//go:build !dampen_release

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattdef/dampen-sub004/pkg/interp"
	"github.com/mattdef/dampen-sub004/pkg/reload"
	"github.com/mattdef/dampen-sub004/pkg/watch"
)

// Profile names the active build profile.
const Profile = "dev"

// Run parses the entry document, starts the file watcher, and hands the
// reload loop to the coordinator until ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Parser == nil {
		return fmt.Errorf("engine: dev profile requires a parser")
	}
	if opts.NewModel == nil {
		return fmt.Errorf("engine: NewModel is required")
	}

	src, err := os.ReadFile(opts.Entry)
	if err != nil {
		return fmt.Errorf("engine: read entry: %w", err)
	}
	doc, perr := opts.Parser.Parse(opts.Entry, src)
	if perr != nil {
		// Startup has no last known-good document to fall back to.
		return fmt.Errorf("engine: parse entry: %w", perr)
	}

	roots := opts.Roots
	if len(roots) == 0 {
		roots = []string{filepath.Dir(opts.Entry)}
	}
	watcher, err := watch.New(watch.Config{
		Roots:      roots,
		Extensions: opts.Extensions,
		Window:     opts.Window,
	})
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.Start()

	it := interp.New()
	it.SetLogger(opts.Logger)
	coord := reload.New(reload.Config{
		Parser:   opts.Parser,
		NewModel: opts.NewModel,
		Render:   opts.Render,
		Interp:   it,
		Logger:   opts.Logger,
	})
	coord.Adopt(doc, opts.NewModel())

	// Shutdown order: the watcher stops producing events before the
	// coordinator loop stops consuming them.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	unhook := context.AfterFunc(ctx, func() {
		watcher.Close()
		cancelLoop()
	})
	defer unhook()

	err = coord.Run(loopCtx, watcher.Events(), watcher.Warnings())
	if err == context.Canceled {
		return nil
	}
	return err
}
