package testutil

import (
	"time"

	"github.com/roach88/macrosim/internal/timeline"
)

// ReleaseEvent builds a minimal economic release for tests: id, schedule,
// and the three impact deltas. Release-only fields stay zero unless the
// test sets them explicitly.
func ReleaseEvent(id string, at time.Time, growth, inflation, volatility float64) timeline.Event {
	return timeline.Event{
		ID:               id,
		Kind:             timeline.KindRelease,
		ScheduledAt:      at,
		ImpactGrowth:     growth,
		ImpactInflation:  inflation,
		ImpactVolatility: volatility,
	}
}

// MacroEvent builds a minimal macro event for tests.
func MacroEvent(id string, at time.Time, growth, inflation, volatility float64) timeline.Event {
	return timeline.Event{
		ID:               id,
		Kind:             timeline.KindMacroEvent,
		ScheduledAt:      at,
		ImpactGrowth:     growth,
		ImpactInflation:  inflation,
		ImpactVolatility: volatility,
	}
}
