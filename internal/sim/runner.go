// Package sim drives one simulation run end to end: it pulls due events
// from the scheduler, applies their impacts through the macro engine, marks
// them as happened, and hands narratives and display off to the
// collaborators.
//
// The run loop is strictly single-threaded. The only suspension point is
// the scheduler's sliced wait, so context cancellation stops the run within
// about a second at any moment.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/macrosim/internal/console"
	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/narrative"
	"github.com/roach88/macrosim/internal/store"
	"github.com/roach88/macrosim/internal/timeline"
)

// Runner executes one simulation run over the events in the store.
type Runner struct {
	store     *store.Store
	scheduler *timeline.Scheduler
	engine    *macro.Engine
	generator *narrative.Generator // nil disables narratives
	presenter *console.Presenter
	fast      bool
}

// Options configures a Runner.
type Options struct {
	// DayDuration is the time compression (real time per simulated day).
	DayDuration time.Duration
	// Generator produces narratives; nil skips narrative generation.
	Generator *narrative.Generator
	// Presenter renders output; required.
	Presenter *console.Presenter
	// Fast advances through events without waiting (fast-forward mode).
	Fast bool
}

// NewRunner loads all future events from st and prepares a run. Building a
// runner over an empty event set succeeds; Run will fail on Start, matching
// the scheduler's contract.
func NewRunner(ctx context.Context, st *store.Store, opts Options) (*Runner, error) {
	events, err := st.ListFutureEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load future events: %w", err)
	}

	tl := timeline.New(events)
	slog.Info("timeline loaded", "events", tl.Len())

	return &Runner{
		store:     st,
		scheduler: timeline.NewScheduler(tl, opts.DayDuration),
		engine:    macro.NewEngine(st),
		generator: opts.Generator,
		presenter: opts.Presenter,
		fast:      opts.Fast,
	}, nil
}

// Scheduler exposes the run's scheduler for progress reporting.
func (r *Runner) Scheduler() *timeline.Scheduler {
	return r.scheduler
}

// Run executes the simulation until the timeline is exhausted or ctx is
// cancelled. The seed macro state must exist before Run is called; a
// missing seed aborts with macro.ErrNoInitialState.
//
// Narrative failures are logged and skipped - commentary is garnish, the
// state machine is not. Store failures abort the run: once an impact cannot
// be persisted the simulation has no trustworthy state to continue from.
func (r *Runner) Run(ctx context.Context) error {
	// Fail fast on a missing seed before starting the clock.
	if _, err := r.engine.CurrentState(ctx); err != nil {
		return err
	}

	if err := r.scheduler.Start(); err != nil {
		return err
	}

	for {
		ev, ok, err := r.next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Info("run interrupted", "progress", r.scheduler.Progress().Processed)
				return err
			}
			return fmt.Errorf("await next event: %w", err)
		}
		if !ok {
			break
		}

		if err := r.processEvent(ctx, ev); err != nil {
			return err
		}
	}

	slog.Info("timeline exhausted", "events", r.scheduler.Progress().Total)
	return nil
}

func (r *Runner) next(ctx context.Context) (timeline.Event, bool, error) {
	if r.fast {
		return r.scheduler.Advance()
	}
	return r.scheduler.AwaitNext(ctx)
}

// processEvent fires one event: pre-narrative (releases), impact, mark as
// happened, post-narrative, display.
func (r *Runner) processEvent(ctx context.Context, ev timeline.Event) error {
	r.presenter.Header(eventTitle(ev), ev.ScheduledAt)
	r.presenter.EventSummary(ev)

	before, err := r.engine.CurrentState(ctx)
	if err != nil {
		return err
	}

	if ev.IsRelease() {
		r.preReleaseNarrative(ctx, ev, before)
	}

	at := ev.ScheduledAt
	after, err := r.engine.ApplyImpact(ctx, ev, &at)
	if err != nil {
		return fmt.Errorf("apply impact for %s %s: %w", ev.Kind, ev.ID, err)
	}

	if err := r.store.MarkHappened(ctx, ev); err != nil {
		return fmt.Errorf("mark %s %s happened: %w", ev.Kind, ev.ID, err)
	}

	r.postNarrative(ctx, ev, before, after)

	r.presenter.Transition(before, after)
	r.presenter.MacroState(after, macro.Classify(after))
	r.presenter.Progress(r.scheduler.Progress())
	return nil
}

// preReleaseNarrative generates and persists the consensus-based analysis
// published before a release fires. Best effort.
func (r *Runner) preReleaseNarrative(ctx context.Context, ev timeline.Event, state macro.State) {
	if r.generator == nil {
		return
	}

	history, err := r.engine.History(ctx, 5, false)
	if err != nil {
		slog.Warn("history read for narrative failed", "error", err)
		history = nil
	}

	content, err := r.generator.PreRelease(ctx, ev, r.releaseTypeCode(ctx, ev), state, history)
	if err != nil {
		slog.Warn("pre-release narrative failed", "release_id", ev.ID, "error", err)
		return
	}

	r.saveAndPresent(ctx, ev, narrative.TypePreRelease, content)
}

// postNarrative generates and persists the reaction commentary after an
// impact has been applied. Best effort.
func (r *Runner) postNarrative(ctx context.Context, ev timeline.Event, before, after macro.State) {
	if r.generator == nil {
		return
	}

	var (
		content       string
		narrativeType string
		err           error
	)
	if ev.IsRelease() {
		narrativeType = narrative.TypePostRelease
		content, err = r.generator.PostRelease(ctx, ev, r.releaseTypeCode(ctx, ev), before, after)
	} else {
		narrativeType = narrative.TypeEvent
		content, err = r.generator.Event(ctx, ev, before, after)
	}
	if err != nil {
		slog.Warn("narrative generation failed",
			"kind", ev.Kind, "event_id", ev.ID, "error", err)
		return
	}

	r.saveAndPresent(ctx, ev, narrativeType, content)
}

func (r *Runner) saveAndPresent(ctx context.Context, ev timeline.Event, narrativeType, content string) {
	_, err := r.store.SaveNarrative(ctx, store.Narrative{
		Timestamp:     ev.ScheduledAt,
		NarrativeType: narrativeType,
		Content:       content,
		ReferenceType: ev.Kind.String(),
		ReferenceID:   ev.ID,
	})
	if err != nil {
		slog.Warn("narrative save failed", "event_id", ev.ID, "error", err)
	}

	r.presenter.Narrative(narrativeType, content)
}

// releaseTypeCode resolves the type code (GDP, NFP, ...) for prompt
// context. Falls back to the raw id when the lookup fails - the narrative
// is still worth generating.
func (r *Runner) releaseTypeCode(ctx context.Context, ev timeline.Event) string {
	rt, err := r.store.GetReleaseType(ctx, ev.ReleaseTypeID)
	if err != nil {
		slog.Warn("release type lookup failed", "release_type_id", ev.ReleaseTypeID, "error", err)
		return ev.ReleaseTypeID
	}
	return rt.Code
}

func eventTitle(ev timeline.Event) string {
	if ev.IsRelease() {
		return "ECONOMIC RELEASE"
	}
	return "MACRO EVENT"
}
