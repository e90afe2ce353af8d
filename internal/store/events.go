package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/macrosim/internal/timeline"
)

// ReleaseType describes a category of economic release (GDP, NFP, CPI, ...).
type ReleaseType struct {
	ID   string
	Code string
	Name string
}

const releaseColumns = `id, release_type_id, name, release_date, consensus, actual,
	impact_growth, impact_inflation, impact_volatility, has_happened`

const macroEventColumns = `id, headline, event_date,
	impact_growth, impact_inflation, impact_volatility, has_happened`

// ListFutureEvents returns all not-yet-happened releases and macro events
// merged into a single sequence ascending by scheduled date. When a release
// and a macro event share an identical date the release comes first - an
// arbitrary but deterministic policy preserved from the original
// release-versus-event comparison.
func (s *Store) ListFutureEvents(ctx context.Context) ([]timeline.Event, error) {
	releases, err := s.futureReleases(ctx)
	if err != nil {
		return nil, err
	}

	macroEvents, err := s.futureMacroEvents(ctx)
	if err != nil {
		return nil, err
	}

	// Merge two already-sorted streams, releases winning ties.
	merged := make([]timeline.Event, 0, len(releases)+len(macroEvents))
	i, j := 0, 0
	for i < len(releases) && j < len(macroEvents) {
		if !macroEvents[j].ScheduledAt.Before(releases[i].ScheduledAt) {
			merged = append(merged, releases[i])
			i++
		} else {
			merged = append(merged, macroEvents[j])
			j++
		}
	}
	merged = append(merged, releases[i:]...)
	merged = append(merged, macroEvents[j:]...)

	return merged, nil
}

func (s *Store) futureReleases(ctx context.Context) ([]timeline.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+releaseColumns+`
		FROM economic_releases
		WHERE has_happened = 0
		ORDER BY release_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query future releases: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		ev, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate releases: %w", err)
	}
	return events, nil
}

func (s *Store) futureMacroEvents(ctx context.Context) ([]timeline.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+macroEventColumns+`
		FROM macro_events
		WHERE has_happened = 0
		ORDER BY event_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query future macro events: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		ev, err := scanMacroEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate macro events: %w", err)
	}
	return events, nil
}

// GetRelease retrieves a single economic release by id.
// Returns ErrNotFound if no such release exists.
func (s *Store) GetRelease(ctx context.Context, id string) (timeline.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+releaseColumns+`
		FROM economic_releases
		WHERE id = ?
	`, id)

	ev, err := scanRelease(row)
	if err == sql.ErrNoRows {
		return timeline.Event{}, fmt.Errorf("release %s: %w", id, ErrNotFound)
	}
	return ev, err
}

// GetMacroEvent retrieves a single macro event by id.
// Returns ErrNotFound if no such event exists.
func (s *Store) GetMacroEvent(ctx context.Context, id string) (timeline.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+macroEventColumns+`
		FROM macro_events
		WHERE id = ?
	`, id)

	ev, err := scanMacroEvent(row)
	if err == sql.ErrNoRows {
		return timeline.Event{}, fmt.Errorf("macro event %s: %w", id, ErrNotFound)
	}
	return ev, err
}

// GetReleaseType retrieves release type metadata by id.
// Returns ErrNotFound if no such type exists.
func (s *Store) GetReleaseType(ctx context.Context, id string) (ReleaseType, error) {
	var rt ReleaseType
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, name FROM release_types WHERE id = ?
	`, id).Scan(&rt.ID, &rt.Code, &rt.Name)
	if err == sql.ErrNoRows {
		return ReleaseType{}, fmt.Errorf("release type %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ReleaseType{}, fmt.Errorf("query release type: %w", err)
	}
	return rt, nil
}

// MarkHappened flags an event as happened on the table matching its kind.
// Idempotent: marking an already-happened event is a no-op update. Returns
// ErrNotFound when the id does not exist in the source.
func (s *Store) MarkHappened(ctx context.Context, ev timeline.Event) error {
	table := "macro_events"
	if ev.IsRelease() {
		table = "economic_releases"
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET has_happened = 1 WHERE id = ?`, ev.ID)
	if err != nil {
		return fmt.Errorf("mark happened: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark happened: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", ev.Kind, ev.ID, ErrNotFound)
	}
	return nil
}

// InsertReleaseType stores a release type. Used by seeding. Re-seeding an
// existing code updates the name and keeps the original row's id, so the
// returned id is read back rather than taken from the input.
func (s *Store) InsertReleaseType(ctx context.Context, rt ReleaseType) (ReleaseType, error) {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO release_types (id, code, name) VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name
		RETURNING id
	`, rt.ID, rt.Code, rt.Name).Scan(&rt.ID)
	if err != nil {
		return ReleaseType{}, fmt.Errorf("insert release type: %w", err)
	}
	return rt, nil
}

// InsertRelease stores an economic release. A missing id is generated.
// Used by seeding.
func (s *Store) InsertRelease(ctx context.Context, ev timeline.Event) (timeline.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	var actual any
	if ev.Actual != nil {
		actual = *ev.Actual
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO economic_releases
		(id, release_type_id, name, release_date, consensus, actual,
		 impact_growth, impact_inflation, impact_volatility, has_happened)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID,
		ev.ReleaseTypeID,
		ev.Name,
		encodeTime(ev.ScheduledAt),
		ev.Consensus,
		actual,
		ev.ImpactGrowth,
		ev.ImpactInflation,
		ev.ImpactVolatility,
		boolToInt(ev.HasHappened),
	)
	if err != nil {
		return timeline.Event{}, fmt.Errorf("insert release: %w", err)
	}
	return ev, nil
}

// InsertMacroEvent stores a macro event. A missing id is generated.
// Used by seeding.
func (s *Store) InsertMacroEvent(ctx context.Context, ev timeline.Event) (timeline.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO macro_events
		(id, headline, event_date,
		 impact_growth, impact_inflation, impact_volatility, has_happened)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID,
		ev.Headline,
		encodeTime(ev.ScheduledAt),
		ev.ImpactGrowth,
		ev.ImpactInflation,
		ev.ImpactVolatility,
		boolToInt(ev.HasHappened),
	)
	if err != nil {
		return timeline.Event{}, fmt.Errorf("insert macro event: %w", err)
	}
	return ev, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRelease(sc scanner) (timeline.Event, error) {
	var (
		ev          timeline.Event
		dateStr     string
		actual      sql.NullFloat64
		hasHappened int
	)
	err := sc.Scan(
		&ev.ID, &ev.ReleaseTypeID, &ev.Name, &dateStr, &ev.Consensus, &actual,
		&ev.ImpactGrowth, &ev.ImpactInflation, &ev.ImpactVolatility, &hasHappened,
	)
	if err == sql.ErrNoRows {
		return timeline.Event{}, err
	}
	if err != nil {
		return timeline.Event{}, fmt.Errorf("scan release: %w", err)
	}

	ev.Kind = timeline.KindRelease
	ev.HasHappened = hasHappened != 0
	if actual.Valid {
		v := actual.Float64
		ev.Actual = &v
	}
	if ev.ScheduledAt, err = decodeTime(dateStr); err != nil {
		return timeline.Event{}, err
	}
	return ev, nil
}

func scanMacroEvent(sc scanner) (timeline.Event, error) {
	var (
		ev          timeline.Event
		dateStr     string
		hasHappened int
	)
	err := sc.Scan(
		&ev.ID, &ev.Headline, &dateStr,
		&ev.ImpactGrowth, &ev.ImpactInflation, &ev.ImpactVolatility, &hasHappened,
	)
	if err == sql.ErrNoRows {
		return timeline.Event{}, err
	}
	if err != nil {
		return timeline.Event{}, fmt.Errorf("scan macro event: %w", err)
	}

	ev.Kind = timeline.KindMacroEvent
	ev.HasHappened = hasHappened != 0
	if ev.ScheduledAt, err = decodeTime(dateStr); err != nil {
		return timeline.Event{}, err
	}
	return ev, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
