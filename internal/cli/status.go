package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/macrosim/internal/console"
	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show simulation statistics and the current macro state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// statusData is the JSON payload for the status command.
type statusData struct {
	Stats  store.Stats  `json:"stats"`
	State  *macro.State `json:"state,omitempty"`
	Regime string       `json:"regime,omitempty"`
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()

	stats, err := st.Stats(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read statistics", err)
	}

	engine := macro.NewEngine(st)
	data := statusData{Stats: stats}

	current, err := engine.CurrentState(ctx)
	switch {
	case err == nil:
		data.State = &current
		data.Regime = macro.Classify(current).String()
	case errors.Is(err, macro.ErrNoInitialState):
		// A fresh database simply has no state yet.
	default:
		return WrapExitError(ExitFailure, "failed to read current state", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(data)
	}

	presenter := console.NewPresenter(cmd.OutOrStdout(), false)
	fmt.Fprintln(cmd.OutOrStdout(), "Simulation data:")
	presenter.Stats(stats)
	if data.State != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Current macro state:")
		presenter.MacroState(*data.State, macro.Classify(*data.State))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No macro state yet: seed the database first.")
	}
	return nil
}
