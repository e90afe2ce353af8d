package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/timeline"
)

// openTestStore opens a store on a fresh file in a temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seedReleaseType inserts a release type and returns it.
func seedReleaseType(t *testing.T, s *Store, code, name string) ReleaseType {
	t.Helper()
	rt, err := s.InsertReleaseType(context.Background(), ReleaseType{Code: code, Name: name})
	require.NoError(t, err)
	require.NotEmpty(t, rt.ID)
	return rt
}

func date(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.DB().QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(path)
	require.NoError(t, err)
	rt := seedReleaseType(t, s, "GDP", "Gross Domestic Product")
	require.NoError(t, s.Close())

	// Migrations are idempotent; existing data survives a reopen.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetReleaseType(context.Background(), rt.ID)
	require.NoError(t, err)
	assert.Equal(t, rt, got)
}

func TestInsertReleaseType_UpsertKeepsID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := seedReleaseType(t, s, "GDP", "Gross Domestic Product")

	// Same code again: the name updates but the row keeps its id, and
	// the returned id must be the stored one so that foreign keys from
	// releases inserted afterwards resolve.
	second, err := s.InsertReleaseType(ctx, ReleaseType{Code: "GDP", Name: "GDP (revised)"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetReleaseType(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "GDP (revised)", got.Name)

	_, err = s.InsertRelease(ctx, timeline.Event{
		Kind:          timeline.KindRelease,
		ReleaseTypeID: second.ID,
		Name:          "GDP Advance Estimate",
		ScheduledAt:   date(1, 12),
		Consensus:     2.1,
	})
	require.NoError(t, err)
}

func TestListFutureEvents_MergeOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rt := seedReleaseType(t, s, "CPI", "Consumer Price Index")

	// Inserted out of order on purpose.
	_, err := s.InsertMacroEvent(ctx, timeline.Event{
		ID: "evt-late", Headline: "Late headline", ScheduledAt: date(3, 9),
	})
	require.NoError(t, err)
	_, err = s.InsertRelease(ctx, timeline.Event{
		ID: "rel-early", ReleaseTypeID: rt.ID, Name: "CPI YoY",
		ScheduledAt: date(1, 9), Consensus: 2.4,
	})
	require.NoError(t, err)
	_, err = s.InsertMacroEvent(ctx, timeline.Event{
		ID: "evt-mid", Headline: "Mid headline", ScheduledAt: date(2, 9),
	})
	require.NoError(t, err)

	events, err := s.ListFutureEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "rel-early", events[0].ID)
	assert.Equal(t, "evt-mid", events[1].ID)
	assert.Equal(t, "evt-late", events[2].ID)

	// Fields round-trip through the row encoding.
	assert.Equal(t, timeline.KindRelease, events[0].Kind)
	assert.Equal(t, "CPI YoY", events[0].Name)
	assert.Equal(t, 2.4, events[0].Consensus)
	assert.Nil(t, events[0].Actual)
	assert.Equal(t, date(1, 9), events[0].ScheduledAt)
	assert.Equal(t, timeline.KindMacroEvent, events[1].Kind)
	assert.Equal(t, "Mid headline", events[1].Headline)
}

func TestListFutureEvents_ReleaseWinsTie(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rt := seedReleaseType(t, s, "NFP", "Nonfarm Payrolls")

	at := date(1, 12)
	_, err := s.InsertMacroEvent(ctx, timeline.Event{
		ID: "evt-tie", Headline: "Simultaneous headline", ScheduledAt: at,
	})
	require.NoError(t, err)
	_, err = s.InsertRelease(ctx, timeline.Event{
		ID: "rel-tie", ReleaseTypeID: rt.ID, Name: "NFP", ScheduledAt: at,
	})
	require.NoError(t, err)

	events, err := s.ListFutureEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "rel-tie", events[0].ID)
	assert.Equal(t, "evt-tie", events[1].ID)
}

func TestListFutureEvents_ExcludesHappened(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rt := seedReleaseType(t, s, "GDP", "Gross Domestic Product")

	_, err := s.InsertRelease(ctx, timeline.Event{
		ID: "rel-done", ReleaseTypeID: rt.ID, Name: "GDP",
		ScheduledAt: date(1, 9), HasHappened: true,
	})
	require.NoError(t, err)
	_, err = s.InsertRelease(ctx, timeline.Event{
		ID: "rel-pending", ReleaseTypeID: rt.ID, Name: "GDP",
		ScheduledAt: date(2, 9),
	})
	require.NoError(t, err)

	events, err := s.ListFutureEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "rel-pending", events[0].ID)
}

func TestGetRelease_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRelease(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetMacroEvent(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetReleaseType(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkHappened(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rt := seedReleaseType(t, s, "CPI", "Consumer Price Index")

	ev, err := s.InsertRelease(ctx, timeline.Event{
		Kind: timeline.KindRelease, ReleaseTypeID: rt.ID,
		Name: "CPI YoY", ScheduledAt: date(1, 9),
	})
	require.NoError(t, err)

	require.NoError(t, s.MarkHappened(ctx, ev))

	got, err := s.GetRelease(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, got.HasHappened)

	// Idempotent on an already-happened event.
	require.NoError(t, s.MarkHappened(ctx, ev))

	// Unknown ids surface ErrNotFound.
	err = s.MarkHappened(ctx, timeline.Event{ID: "missing", Kind: timeline.KindMacroEvent})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHistory_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LatestState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	seed, err := s.SeedInitialState(ctx, macro.State{
		Growth: 2.0, Inflation: 2.0, Volatility: 10.0,
		Timestamp: date(1, 9),
		CauseType: macro.CauseRelease, // overridden by seeding
		CauseID:   "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, macro.CauseInitial, seed.CauseType)
	assert.Empty(t, seed.CauseID)

	next, err := s.AppendState(ctx, macro.State{
		Growth: 2.5, Inflation: 1.8, Volatility: 13.0,
		Timestamp: date(2, 9),
		CauseType: macro.CauseRelease,
		CauseID:   "rel-1",
	})
	require.NoError(t, err)

	latest, ok, err := s.LatestState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, next.ID, latest.ID)
	assert.Equal(t, 2.5, latest.Growth)
	assert.Equal(t, "rel-1", latest.CauseID)
	assert.Equal(t, date(2, 9), latest.Timestamp)
}

func TestRecentStates_WindowAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for day := 1; day <= 4; day++ {
		_, err := s.AppendState(ctx, macro.State{
			Growth:    float64(day),
			Timestamp: date(day, 9),
			CauseType: macro.CauseEvent,
			CauseID:   "evt",
		})
		require.NoError(t, err)
	}

	// Descending picks the newest window.
	states, err := s.RecentStates(ctx, 2, false)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, 4.0, states[0].Growth)
	assert.Equal(t, 3.0, states[1].Growth)

	// Ascending reverses the same window rather than selecting the oldest.
	states, err = s.RecentStates(ctx, 2, true)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, 3.0, states[0].Growth)
	assert.Equal(t, 4.0, states[1].Growth)
}

func TestNarratives_SaveAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveNarrative(ctx, Narrative{
		Timestamp:     date(1, 9),
		NarrativeType: "pre_release",
		Content:       "Markets brace for the CPI print.",
		ReferenceType: "release",
		ReferenceID:   "rel-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = s.SaveNarrative(ctx, Narrative{
		Timestamp:     date(1, 10),
		NarrativeType: "post_release",
		Content:       "CPI lands hotter than consensus.",
		ReferenceType: "release",
		ReferenceID:   "rel-1",
	})
	require.NoError(t, err)

	_, err = s.SaveNarrative(ctx, Narrative{
		Timestamp:     date(1, 11),
		NarrativeType: "event",
		Content:       "Unrelated headline narrative.",
		ReferenceType: "event",
		ReferenceID:   "evt-1",
	})
	require.NoError(t, err)

	narratives, err := s.NarrativesFor(ctx, "release", "rel-1")
	require.NoError(t, err)
	require.Len(t, narratives, 2)
	assert.Equal(t, "pre_release", narratives[0].NarrativeType)
	assert.Equal(t, "post_release", narratives[1].NarrativeType)
	assert.Equal(t, date(1, 9), narratives[0].Timestamp)
}

func TestSaveNarrative_RejectsUnknownType(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SaveNarrative(context.Background(), Narrative{
		Timestamp:     date(1, 9),
		NarrativeType: "interpretive_dance",
		Content:       "x",
		ReferenceType: "release",
		ReferenceID:   "rel-1",
	})
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rt := seedReleaseType(t, s, "GDP", "Gross Domestic Product")

	_, err := s.InsertRelease(ctx, timeline.Event{
		ReleaseTypeID: rt.ID, Name: "GDP", ScheduledAt: date(1, 9), HasHappened: true,
	})
	require.NoError(t, err)
	_, err = s.InsertRelease(ctx, timeline.Event{
		ReleaseTypeID: rt.ID, Name: "GDP", ScheduledAt: date(2, 9),
	})
	require.NoError(t, err)
	_, err = s.InsertMacroEvent(ctx, timeline.Event{
		Headline: "Headline", ScheduledAt: date(1, 12),
	})
	require.NoError(t, err)
	_, err = s.SeedInitialState(ctx, macro.State{Timestamp: date(1, 9)})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalReleases:  2,
		FutureReleases: 1,
		TotalEvents:    1,
		FutureEvents:   1,
		HistoryRecords: 1,
		Narratives:     0,
	}, stats)
}

func TestTimeEncoding_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 15, 123456789, time.UTC)
	decoded, err := decodeTime(encodeTime(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(decoded))
}
