// Package commands implements the stagehand CLI: a diagnostic surface over
// the persisted actor state of a Stagehand runtime.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagehand/stagehand/pkg/config"
	"github.com/stagehand/stagehand/pkg/runtime"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stagehand",
		Short: "Stagehand - client-side state-orchestration runtime",
		Long: `Stagehand manages named actor state containers with dependency-aware
initialization ordering, supervised fault recovery, and validated snapshot
persistence.

This CLI is the diagnostic surface over a runtime's persisted state:
  - inspect persisted snapshots and their validation verdicts
  - validate a single actor's persisted snapshot
  - clear persisted entries`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newClearCommand())

	return rootCmd
}

// buildRuntime loads configuration and assembles a runtime for a command.
func buildRuntime(ctx context.Context) (*runtime.Runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return runtime.New(ctx, cfg)
}
