package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/macrosim/internal/config"
	"github.com/roach88/macrosim/internal/store"
	"github.com/roach88/macrosim/internal/timeline"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	Database string
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Summarize the pending event timeline",
		Long: `Summarize the timeline of not-yet-happened events: simulated span,
real duration under the configured compression, and event counts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTimeline(opts *TimelineOptions, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
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

	events, err := st.ListFutureEvents(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load events", err)
	}

	tl := timeline.New(events)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		releases, macroEvents := tl.Counts()
		return formatter.Success(map[string]any{
			"total":        tl.Len(),
			"releases":     releases,
			"macro_events": macroEvents,
			"span_days":    tl.Span().Hours() / 24,
		})
	}
	return formatter.Success(tl.Summary(cfg.DayDuration()))
}
