// Package harness provides a conformance testing framework for the
// macro simulation.
//
// A scenario pins down a seed state and a timeline of events; the harness
// replays the timeline through the real scheduler and evolution engine
// (no sleeping, events are drained in order) and records every resulting
// state together with its regime classification. The trace is then checked
// against the scenario's expect clause and, optionally, against a golden
// file so any change to the evolution or classification rules shows up as
// a diff.
//
// Scenarios run against an in-memory history store for isolation; the
// SQLite-backed store has its own tests.
package harness

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/testutil"
	"github.com/roach88/macrosim/internal/timeline"
)

// floatTolerance is the allowed absolute difference when comparing
// expected and actual state values. Impacts are plain additions, so any
// drift beyond accumulated float64 rounding is a real failure.
const floatTolerance = 1e-9

// TraceEntry records one event application: which event fired, the state
// it produced, and the regime that state classifies to.
type TraceEntry struct {
	Seq        int     `json:"seq"`
	EventID    string  `json:"event_id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	SimTime    string  `json:"sim_time"`
	Growth     float64 `json:"growth"`
	Inflation  float64 `json:"inflation"`
	Volatility float64 `json:"volatility"`
	Regime     string  `json:"regime"`
}

// Result holds the outcome of running a scenario.
type Result struct {
	// Trace lists one entry per applied event, in firing order.
	Trace []TraceEntry

	// Final is the state after the last event.
	Final macro.State

	// FinalRegime is the classification of Final.
	FinalRegime macro.Regime

	// Errors collects expect-clause violations. Empty means the
	// scenario passed.
	Errors []string
}

// Passed reports whether the scenario ran without expectation failures.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// AddError records an expectation failure.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Seed a fresh in-memory history with the scenario's initial state
//  2. Build the timeline (releases ahead of events on equal timestamps,
//     matching the store's merge order)
//  3. Drain the scheduler without sleeping, applying each impact through
//     the evolution engine at the event's simulated time
//  4. Evaluate the expect clause against the final state
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	clock := testutil.NewFakeClock(scenario.InitialState.Timestamp)
	history := testutil.NewMemHistory()

	seed := macro.State{
		ID:         "state-initial",
		Growth:     scenario.InitialState.Growth,
		Inflation:  scenario.InitialState.Inflation,
		Volatility: scenario.InitialState.Volatility,
		Timestamp:  scenario.InitialState.Timestamp.UTC(),
		CauseType:  macro.CauseInitial,
	}
	if _, err := history.AppendState(ctx, seed); err != nil {
		return nil, fmt.Errorf("failed to seed initial state: %w", err)
	}

	engine := macro.NewEngine(history, macro.WithNowFunc(clock.Now))

	events := buildEvents(scenario.Events)
	tl := timeline.New(events)
	sched := timeline.NewScheduler(tl, time.Minute, timeline.WithNowFunc(clock.Now))
	if err := sched.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	result := &Result{}
	for {
		ev, ok, err := sched.Advance()
		if err != nil {
			return nil, fmt.Errorf("failed to advance timeline: %w", err)
		}
		if !ok {
			break
		}

		at := ev.ScheduledAt
		state, err := engine.ApplyImpact(ctx, ev, &at)
		if err != nil {
			return nil, fmt.Errorf("failed to apply impact of %s: %w", ev.ID, err)
		}

		regime := macro.Classify(state)
		result.Trace = append(result.Trace, TraceEntry{
			Seq:        len(result.Trace) + 1,
			EventID:    ev.ID,
			Name:       eventName(ev),
			Kind:       ev.Kind.String(),
			SimTime:    ev.ScheduledAt.UTC().Format(time.RFC3339),
			Growth:     state.Growth,
			Inflation:  state.Inflation,
			Volatility: state.Volatility,
			Regime:     regime.Label,
		})
		result.Final = state
		result.FinalRegime = regime
	}

	evaluateExpect(result, scenario.Expect)
	return result, nil
}

// buildEvents converts scenario steps to timeline events. Releases are
// placed ahead of macro events sharing the same timestamp, preserving the
// tie-break the store applies when loading the timeline.
func buildEvents(steps []EventStep) []timeline.Event {
	events := make([]timeline.Event, 0, len(steps))
	for _, step := range steps {
		ev := timeline.Event{
			ID:               step.ID,
			ScheduledAt:      step.ScheduledAt.UTC(),
			ImpactGrowth:     step.Impact.Growth,
			ImpactInflation:  step.Impact.Inflation,
			ImpactVolatility: step.Impact.Volatility,
		}
		if step.Kind == StepKindRelease {
			ev.Kind = timeline.KindRelease
			ev.Name = step.Name
		} else {
			ev.Kind = timeline.KindMacroEvent
			ev.Headline = step.Name
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ScheduledAt.Equal(events[j].ScheduledAt) {
			return events[i].IsRelease() && !events[j].IsRelease()
		}
		return events[i].ScheduledAt.Before(events[j].ScheduledAt)
	})
	return events
}

// eventName returns the display name of an event: the release name or the
// macro event headline.
func eventName(ev timeline.Event) string {
	if ev.IsRelease() {
		return ev.Name
	}
	return ev.Headline
}

// evaluateExpect checks the expect clause against the final state and
// records every violation on the result.
func evaluateExpect(result *Result, expect *ExpectClause) {
	if expect == nil {
		return
	}

	check := func(field string, want *float64, got float64) {
		if want == nil {
			return
		}
		if math.Abs(*want-got) > floatTolerance {
			result.AddError(fmt.Sprintf("final %s: want %v, got %v", field, *want, got))
		}
	}
	check("growth", expect.Growth, result.Final.Growth)
	check("inflation", expect.Inflation, result.Final.Inflation)
	check("volatility", expect.Volatility, result.Final.Volatility)

	if expect.Regime != "" && expect.Regime != result.FinalRegime.Label {
		result.AddError(fmt.Sprintf("final regime: want %q, got %q",
			expect.Regime, result.FinalRegime.Label))
	}
}
