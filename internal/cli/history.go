package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Asc      bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show recent macro variable history",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of entries to show")
	cmd.Flags().BoolVar(&opts.Asc, "asc", false, "oldest first instead of newest first")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	engine := macro.NewEngine(st)
	states, err := engine.History(cmd.Context(), opts.Limit, opts.Asc)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read history", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(states)
	}

	if len(states) == 0 {
		return formatter.Success("History is empty: seed the database first.")
	}

	var b strings.Builder
	for _, s := range states {
		cause := string(s.CauseType)
		if s.CauseID != "" {
			cause += " " + s.CauseID
		}
		fmt.Fprintf(&b, "%s  growth=%+.2f inflation=%+.2f volatility=%.2f  regime=%s  (%s)\n",
			s.Timestamp.Format("2006-01-02 15:04"),
			s.Growth, s.Inflation, s.Volatility,
			macro.Classify(s).Label, cause)
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
	return nil
}
