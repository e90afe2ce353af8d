package timeline

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Usage errors. Both indicate precondition violations by the caller and are
// fatal to the run rather than recoverable runtime conditions.
var (
	// ErrEmptyTimeline is returned by Start when the timeline has no events.
	ErrEmptyTimeline = errors.New("timeline has no events")
	// ErrNotStarted is returned by operations that need the anchor pair
	// before Start has been called.
	ErrNotStarted = errors.New("timeline not started: call Start first")
)

// schedulerState is the explicit lifecycle of a Scheduler.
type schedulerState int

const (
	stateUnstarted schedulerState = iota
	stateRunning
	// Exhausted is derived, not stored: Running with position == Len.
)

// maxSleepSlice bounds each suspension inside AwaitNext so an external
// cancellation signal is observed within one slice rather than only at the
// end of the full wait.
const maxSleepSlice = time.Second

// Scheduler is a stateful cursor over one Timeline, driving a single
// simulation run. It owns the anchor pair (simulated start, real start)
// and converts each event's scheduled time into a real-time offset.
//
// Lifecycle: Unstarted -> Running -> Exhausted. Start is valid exactly once;
// the cursor position only increases and never exceeds the timeline length.
// Exhaustion is observable (PeekNext reports no event) but needs no explicit
// transition call.
//
// Exactly one consumer advances the cursor. Concurrent calls to AwaitNext
// or Advance on the same Scheduler are undefined; there is no internal
// locking.
type Scheduler struct {
	timeline *Timeline
	position int
	state    schedulerState

	simAnchor  time.Time
	realAnchor time.Time
	converter  Converter

	dayDuration time.Duration

	// now is injectable for deterministic tests; defaults to time.Now.
	now func() time.Time
	// sleepSlice is the maximum single suspension; defaults to maxSleepSlice.
	// Tests shrink it to keep wall time negligible.
	sleepSlice time.Duration
}

// SchedulerOption configures a Scheduler at construction.
type SchedulerOption func(*Scheduler)

// WithNowFunc overrides the wall-clock source. Used by tests to pin the
// real anchor and elapsed time.
func WithNowFunc(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithSleepSlice overrides the maximum single suspension inside AwaitNext.
func WithSleepSlice(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.sleepSlice = d
	}
}

// NewScheduler creates a Scheduler over tl with the given day compression.
// The scheduler starts Unstarted with the cursor at position 0.
func NewScheduler(tl *Timeline, dayDuration time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		timeline:    tl,
		dayDuration: dayDuration,
		now:         time.Now,
		sleepSlice:  maxSleepSlice,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start anchors the simulation clock: the simulated anchor is the first
// event's scheduled time, the real anchor is the current wall-clock
// instant. Valid only once, from Unstarted.
//
// Returns ErrEmptyTimeline if the timeline has no events - constructing an
// empty timeline is fine, starting a run over one is not.
func (s *Scheduler) Start() error {
	first, ok := s.timeline.First()
	if !ok {
		return ErrEmptyTimeline
	}

	s.simAnchor = first.ScheduledAt
	s.realAnchor = s.now()
	s.converter = NewConverter(s.simAnchor, s.dayDuration)
	s.state = stateRunning

	slog.Info("timeline started",
		"simulation_start", s.simAnchor,
		"real_start", s.realAnchor,
		"events", s.timeline.Len(),
		"day_duration", s.dayDuration,
	)
	return nil
}

// PeekNext returns the event at the cursor together with its real-time
// offset in seconds from the real anchor, without advancing. ok is false
// once the timeline is exhausted; that answer is stable on every
// subsequent call.
func (s *Scheduler) PeekNext() (ev Event, realOffsetSeconds float64, ok bool, err error) {
	if s.state == stateUnstarted {
		return Event{}, 0, false, ErrNotStarted
	}
	if s.position >= s.timeline.Len() {
		return Event{}, 0, false, nil
	}

	ev = s.timeline.At(s.position)
	return ev, s.converter.RealOffset(ev.ScheduledAt), true, nil
}

// Advance returns the next event and increments the cursor without
// waiting. Fast-forward path for tests and the --fast run mode.
func (s *Scheduler) Advance() (Event, bool, error) {
	ev, _, ok, err := s.PeekNext()
	if err != nil || !ok {
		return Event{}, false, err
	}
	s.position++
	return ev, true, nil
}

// AwaitNext blocks until the next event's real-time offset arrives, then
// increments the cursor and returns the event. ok is false when the
// timeline is exhausted.
//
// The wait is sliced: each suspension is at most sleepSlice (one second by
// default) so ctx cancellation interrupts the wait within one slice instead
// of only at the end of the full remaining duration. Waits that have
// already elapsed (offset in the past) return immediately.
func (s *Scheduler) AwaitNext(ctx context.Context) (Event, bool, error) {
	ev, offset, ok, err := s.PeekNext()
	if err != nil || !ok {
		return Event{}, false, err
	}

	wait := time.Duration((offset - s.elapsedSeconds()) * float64(time.Second))
	if wait > 0 {
		slog.Debug("waiting for next event",
			"event_id", ev.ID,
			"scheduled_at", ev.ScheduledAt,
			"wait", wait,
		)
		if err := s.sleep(ctx, wait); err != nil {
			return Event{}, false, err
		}
	}

	s.position++
	return ev, true, nil
}

// sleep suspends for d in bounded slices, returning early with ctx.Err()
// on cancellation.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for d > 0 {
		slice := min(d, s.sleepSlice)
		timer.Reset(slice)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		d -= slice
	}
	return nil
}

// elapsedSeconds returns real seconds since the real anchor.
func (s *Scheduler) elapsedSeconds() float64 {
	return s.now().Sub(s.realAnchor).Seconds()
}

// Progress reports the cursor's position through the timeline.
type Progress struct {
	Total      int
	Processed  int
	Remaining  int
	Percentage float64

	// CurrentSimTime is the simulated instant implied by live elapsed real
	// time. Valid only while Running; Known is false before Start.
	CurrentSimTime time.Time
	Known          bool
}

// Progress returns the current progress through the timeline. Safe to call
// in any state: before Start the simulated clock is simply not yet known.
func (s *Scheduler) Progress() Progress {
	total := s.timeline.Len()
	p := Progress{
		Total:     total,
		Processed: s.position,
		Remaining: total - s.position,
	}
	if total > 0 {
		p.Percentage = float64(s.position) / float64(total) * 100
	}
	if s.state == stateRunning {
		p.CurrentSimTime = s.converter.SimTime(s.elapsedSeconds())
		p.Known = true
	}
	return p
}
