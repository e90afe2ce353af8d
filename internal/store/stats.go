package store

import (
	"context"
	"fmt"
)

// Stats summarizes the simulation data.
type Stats struct {
	TotalReleases  int
	FutureReleases int
	TotalEvents    int
	FutureEvents   int
	HistoryRecords int
	Narratives     int
}

// Stats returns record counts across all simulation tables.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		dest  *int
		query string
	}{
		{&st.TotalReleases, `SELECT COUNT(*) FROM economic_releases`},
		{&st.FutureReleases, `SELECT COUNT(*) FROM economic_releases WHERE has_happened = 0`},
		{&st.TotalEvents, `SELECT COUNT(*) FROM macro_events`},
		{&st.FutureEvents, `SELECT COUNT(*) FROM macro_events WHERE has_happened = 0`},
		{&st.HistoryRecords, `SELECT COUNT(*) FROM macro_variables_history`},
		{&st.Narratives, `SELECT COUNT(*) FROM narratives`},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("count query failed: %w", err)
		}
	}
	return st, nil
}
