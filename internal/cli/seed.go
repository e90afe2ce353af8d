package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/macrosim/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load event fixtures into the database",
		Long: `Load a YAML fixtures file: release types, economic releases, macro
events, and the initial macro state. The initial state is only written when
the history is empty.

Example:
  macrosim seed --db ./macrosim.db ./fixtures/q1.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(opts *SeedOptions, fixturesPath string, cmd *cobra.Command) error {
	fixtures, err := LoadFixtures(fixturesPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load fixtures", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	res, err := fixtures.Seed(cmd.Context(), st)
	if err != nil {
		return WrapExitError(ExitFailure, "seeding failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(res)
	}
	return formatter.Success(fmt.Sprintf(
		"Seeded %d release types, %d releases, %d events (initial state written: %t)",
		res.ReleaseTypes, res.Releases, res.Events, res.StateSeeded,
	))
}
