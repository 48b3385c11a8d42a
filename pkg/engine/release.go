//go:build dampen_release

package engine

import (
	"context"
	"fmt"
)

// Profile names the active build profile.
const Profile = "release"

// Run renders once through the generated builder. The interpreter, watcher,
// and reload machinery are not linked into release binaries.
func Run(ctx context.Context, opts Options) error {
	if opts.Build == nil {
		return fmt.Errorf("engine: release profile requires a generated builder")
	}
	if opts.NewModel == nil {
		return fmt.Errorf("engine: NewModel is required")
	}
	model := opts.NewModel()
	if opts.Render != nil {
		opts.Render(opts.Build(model))
	}
	<-ctx.Done()
	return nil
}
