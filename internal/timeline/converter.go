package timeline

import "time"

const hoursPerDay = 24

// Converter maps between simulated calendar time and real elapsed time.
//
// The mapping is anchored at a single simulated instant (the timeline's
// first event) and scaled by the day compression: one simulated day elapses
// in dayDuration of real time. Both directions are pure and exact inverses
// of each other to within floating-point tolerance.
type Converter struct {
	simAnchor   time.Time
	dayDuration time.Duration
}

// NewConverter creates a Converter anchored at simAnchor with the given
// compression. dayDuration must be positive; the Scheduler validates this
// via config before construction.
func NewConverter(simAnchor time.Time, dayDuration time.Duration) Converter {
	return Converter{simAnchor: simAnchor, dayDuration: dayDuration}
}

// RealOffset converts a simulated instant into real seconds from the
// anchor. Instants before the anchor yield negative offsets, which simply
// mean the wait has already elapsed.
func (c Converter) RealOffset(simTime time.Time) float64 {
	simDays := simTime.Sub(c.simAnchor).Hours() / hoursPerDay
	return simDays * c.dayDuration.Seconds()
}

// SimTime converts real elapsed seconds since the anchor into the
// corresponding simulated instant. Inverse of RealOffset.
func (c Converter) SimTime(realElapsedSeconds float64) time.Time {
	simDays := realElapsedSeconds / c.dayDuration.Seconds()
	return c.simAnchor.Add(time.Duration(simDays * hoursPerDay * float64(time.Hour)))
}
