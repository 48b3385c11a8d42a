package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "dampen",
		Short: "Dampen - dual-mode declarative UI engine",
		Long: `Dampen executes declarative UI documents two ways from one IR: a
hot-reloading interpreter for development and an ahead-of-time Go code
generator for release builds, with identical rendered output.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(newDevCommand())
	rootCmd.AddCommand(newBuildCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
