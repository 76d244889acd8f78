package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/printer"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// Global flags
var (
	configPath      string
	discoverDocker  bool
	verbose         bool
	timeout         time.Duration
	metricsTextfile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aurora",
	Short: "Aurora - client for Aurora job schedulers",
	Long: `Aurora is a command-line client for one or more Aurora scheduler clusters.

Jobs are addressed by keys of the form cluster/role/env/name. Any trailing
segments may be omitted and any segment may be a shell glob:

  west/www-data/prod/hello   exactly one job
  west/www-data              every job of role www-data on cluster west
  */*/prod/api-?             matching prod jobs on every cluster

Clusters are read from ~/.aurora/clusters.yml (override with --config or
AURORA_CONFIG) and optionally discovered from local Docker containers.`,
	Version: version,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return clierr.New(clierr.ExitInvalidCommand, "unknown command %q for %q", args[0], cmd.CommandPath())
		}
		return nil
	},
	// Prevent silent success when invoked without a subcommand
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// Commands print formatted colored errors through the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.ExecuteContext(context.Background())
	if clierr.CodeOf(err) == clierr.ExitInvalidCommand {
		// Usage errors never reach a command, so nothing has printed them yet
		return printer.Fail(err, "Run 'aurora --help' for usage.")
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// exactArgs is cobra.ExactArgs with a classified error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return clierr.New(clierr.ExitInvalidCommand, "%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to clusters.yml (default $AURORA_CONFIG or ~/.aurora/clusters.yml)")
	rootCmd.PersistentFlags().BoolVar(&discoverDocker, "discover-docker", false, "Also use clusters advertised by local Docker containers")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every scheduler response to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Deadline for the whole command (default from clusters.yml, 30s)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write scheduler call metrics to this file in Prometheus text format")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierr.Wrap(clierr.ExitInvalidCommand, err, "%s", cmd.CommandPath())
	})
}
