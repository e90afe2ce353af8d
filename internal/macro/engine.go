package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/macrosim/internal/timeline"
)

// ErrNoInitialState indicates the history has no seed entry. The engine
// never synthesizes a bootstrap state: seeding is a precondition of the
// run, and a missing seed is fatal to the simulation.
var ErrNoInitialState = errors.New("no macro state in history: database not seeded")

// HistoryStore is the append-only history collaborator. The engine only
// reads the latest entry and appends new ones; it never mutates or deletes
// history.
type HistoryStore interface {
	// LatestState returns the most-recent-by-timestamp entry.
	// ok is false when the history is empty.
	LatestState(ctx context.Context) (State, bool, error)

	// AppendState stores a new entry and returns the stored record
	// (e.g. with a generated id).
	AppendState(ctx context.Context, s State) (State, error)

	// RecentStates returns the most recent limit entries, ascending or
	// descending by timestamp as requested.
	RecentStates(ctx context.Context, limit int, ascending bool) ([]State, error)
}

// Engine evolves the three macro variables by applying signed impact deltas
// from releases and macro events on top of the latest history entry.
//
// ApplyImpact is the only state-mutating operation and it is not
// idempotent: applying the same event twice appends two deltas. The caller
// is responsible for applying each event exactly once, enforced externally
// by marking the event as happened. At-most-one ApplyImpact call is assumed
// to be in flight per simulation; there is no optimistic-concurrency check
// on the read-latest-then-append sequence.
type Engine struct {
	history HistoryStore
	now     func() time.Time
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithNowFunc overrides the wall-clock source used for default timestamps.
func WithNowFunc(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine over the given history store.
func NewEngine(history HistoryStore, opts ...EngineOption) *Engine {
	e := &Engine{
		history: history,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentState returns the latest entry in the history. Returns
// ErrNoInitialState when the history is empty.
func (e *Engine) CurrentState(ctx context.Context) (State, error) {
	latest, ok, err := e.history.LatestState(ctx)
	if err != nil {
		return State{}, fmt.Errorf("read latest state: %w", err)
	}
	if !ok {
		return State{}, ErrNoInitialState
	}
	return latest, nil
}

// ApplyImpact applies an event's signed deltas to the current state and
// appends the result to the history. Volatility is clamped at exactly zero;
// growth and inflation are unbounded.
//
// The new entry's timestamp is at when non-nil, otherwise now (UTC). Either
// the append succeeds and the stored state is returned, or it fails and no
// state change is observable.
func (e *Engine) ApplyImpact(ctx context.Context, ev timeline.Event, at *time.Time) (State, error) {
	current, err := e.CurrentState(ctx)
	if err != nil {
		return State{}, err
	}

	next := State{
		Growth:     current.Growth + ev.ImpactGrowth,
		Inflation:  current.Inflation + ev.ImpactInflation,
		Volatility: max(0, current.Volatility+ev.ImpactVolatility),
		CauseType:  causeFor(ev),
		CauseID:    ev.ID,
	}
	if at != nil {
		next.Timestamp = *at
	} else {
		next.Timestamp = e.now().UTC()
	}

	stored, err := e.history.AppendState(ctx, next)
	if err != nil {
		return State{}, fmt.Errorf("append state: %w", err)
	}

	slog.Info("impact applied",
		"cause_type", stored.CauseType,
		"cause_id", stored.CauseID,
		"growth", stored.Growth,
		"inflation", stored.Inflation,
		"volatility", stored.Volatility,
	)
	return stored, nil
}

// History returns the most recent limit entries, ordered as requested.
// Read-only projection with no side effects.
func (e *Engine) History(ctx context.Context, limit int, ascending bool) ([]State, error) {
	states, err := e.history.RecentStates(ctx, limit, ascending)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return states, nil
}

func causeFor(ev timeline.Event) CauseType {
	if ev.IsRelease() {
		return CauseRelease
	}
	return CauseEvent
}
