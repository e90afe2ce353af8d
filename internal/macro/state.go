package macro

import "time"

// CauseType identifies what produced a state entry.
type CauseType string

const (
	// CauseInitial marks the seed state written before the run starts.
	CauseInitial CauseType = "initial"
	// CauseRelease marks a state produced by an economic release impact.
	CauseRelease CauseType = "release"
	// CauseEvent marks a state produced by a macro event impact.
	CauseEvent CauseType = "event"
)

// State is one entry in the macro variables history: the three continuous
// variables plus provenance. Growth and Inflation are unbounded; Volatility
// is clamped at zero by the engine and is never negative in a stored state.
type State struct {
	ID         string
	Growth     float64
	Inflation  float64
	Volatility float64
	Timestamp  time.Time
	CauseType  CauseType
	CauseID    string // empty for CauseInitial
}
