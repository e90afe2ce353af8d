package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Timeline is an immutable, date-sorted sequence of events for one
// simulation run. It is built once from all not-yet-happened events and
// never mutated afterwards; consumption happens through a Scheduler cursor,
// not through the Timeline itself.
//
// Ordering is a stable sort on ScheduledAt only. Events sharing an identical
// timestamp keep the relative order they had in the input slice. The store
// merges releases ahead of macro events on equal dates, so that arbitrary
// but deterministic tie-break is established before the Timeline ever sees
// the data.
type Timeline struct {
	events []Event
}

// New builds a Timeline from the given events. The input slice is copied
// and stable-sorted by ScheduledAt; the caller's slice is never retained.
// A zero-length input is valid and yields an empty (but usable) Timeline.
func New(events []Event) *Timeline {
	sorted := make([]Event, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledAt.Before(sorted[j].ScheduledAt)
	})

	return &Timeline{events: sorted}
}

// Len returns the number of events on the timeline.
func (t *Timeline) Len() int {
	return len(t.events)
}

// At returns the event at position i. Panics if i is out of range, matching
// slice semantics - positions come from the Scheduler cursor, which never
// exceeds Len.
func (t *Timeline) At(i int) Event {
	return t.events[i]
}

// First returns the earliest event. ok is false for an empty timeline.
func (t *Timeline) First() (Event, bool) {
	if len(t.events) == 0 {
		return Event{}, false
	}
	return t.events[0], true
}

// Last returns the latest event. ok is false for an empty timeline.
func (t *Timeline) Last() (Event, bool) {
	if len(t.events) == 0 {
		return Event{}, false
	}
	return t.events[len(t.events)-1], true
}

// Span returns the simulated duration between the first and last event.
// Zero for timelines with fewer than two events.
func (t *Timeline) Span() time.Duration {
	if len(t.events) < 2 {
		return 0
	}
	return t.events[len(t.events)-1].ScheduledAt.Sub(t.events[0].ScheduledAt)
}

// Counts returns the number of releases and macro events on the timeline.
func (t *Timeline) Counts() (releases, macroEvents int) {
	for _, e := range t.events {
		if e.IsRelease() {
			releases++
		} else {
			macroEvents++
		}
	}
	return releases, macroEvents
}

// Summary renders a human-readable overview of the timeline: simulated
// span, real duration under the given day compression, and event counts.
func (t *Timeline) Summary(dayDuration time.Duration) string {
	if len(t.events) == 0 {
		return "Timeline is empty"
	}

	first := t.events[0].ScheduledAt
	last := t.events[len(t.events)-1].ScheduledAt
	simDays := t.Span().Hours() / 24

	conv := NewConverter(first, dayDuration)
	realDuration := time.Duration(conv.RealOffset(last) * float64(time.Second))

	releases, macroEvents := t.Counts()

	var b strings.Builder
	fmt.Fprintf(&b, "Timeline summary:\n")
	fmt.Fprintf(&b, "  Simulated period: %s to %s\n",
		first.Format("2006-01-02 15:04"), last.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "  Simulated duration: %.1f days\n", simDays)
	fmt.Fprintf(&b, "  Real duration: %.1f minutes\n", realDuration.Minutes())
	fmt.Fprintf(&b, "  Total events: %d (%d releases, %d macro events)\n",
		len(t.events), releases, macroEvents)
	fmt.Fprintf(&b, "  Time compression: 1 day = %.0f seconds", dayDuration.Seconds())
	return b.String()
}
