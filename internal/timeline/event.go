package timeline

import "time"

// Kind distinguishes the two event variants in the simulation.
type Kind int

const (
	// KindRelease is a scheduled economic data release (GDP, NFP, CPI, ...)
	// with a consensus forecast and, once realized, an actual value.
	KindRelease Kind = iota + 1
	// KindMacroEvent is an unscheduled macro or geopolitical headline
	// (central bank surprise, supply shock, ...).
	KindMacroEvent
)

// String returns the storage name for the kind ("release" or "event").
func (k Kind) String() string {
	switch k {
	case KindRelease:
		return "release"
	case KindMacroEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Event is one record on the simulation timeline. Exactly one variant is
// populated per record: releases carry Name/ReleaseTypeID/Consensus/Actual,
// macro events carry Headline. ScheduledAt is the sole sort key.
//
// The three Impact fields are signed deltas applied to the macro state when
// the event fires. They are set at seed time and never change.
type Event struct {
	ID          string
	Kind        Kind
	ScheduledAt time.Time

	ImpactGrowth     float64
	ImpactInflation  float64
	ImpactVolatility float64
	HasHappened      bool

	// Release-only fields.
	Name          string
	ReleaseTypeID string
	Consensus     float64
	Actual        *float64 // nil until the release is realized

	// MacroEvent-only field.
	Headline string
}

// IsRelease reports whether the event is an economic release.
func (e Event) IsRelease() bool {
	return e.Kind == KindRelease
}
