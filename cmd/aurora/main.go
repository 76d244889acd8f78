package main

import (
	"os"

	"github.com/dyluth/aurora-cli/cmd/aurora/commands"
	"github.com/dyluth/aurora-cli/internal/clierr"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set version information on root command
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the printer package; the exit code carries the classification
	if err := commands.Execute(); err != nil {
		os.Exit(int(clierr.CodeOf(err)))
	}
}
