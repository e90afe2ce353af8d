package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/macrosim/internal/macro"
)

// The history methods implement macro.HistoryStore. The history is
// append-only: nothing here updates or deletes rows.

const historyColumns = `id, timestamp, growth, inflation, volatility, cause_type, cause_id`

// LatestState returns the most-recent-by-timestamp history entry.
// ok is false when the history is empty.
func (s *Store) LatestState(ctx context.Context) (macro.State, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM macro_variables_history
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`)

	st, err := scanState(row)
	if err == sql.ErrNoRows {
		return macro.State{}, false, nil
	}
	if err != nil {
		return macro.State{}, false, err
	}
	return st, true, nil
}

// AppendState inserts a new history entry and returns the stored record
// with its generated id.
func (s *Store) AppendState(ctx context.Context, st macro.State) (macro.State, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	var causeID any
	if st.CauseID != "" {
		causeID = st.CauseID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO macro_variables_history
		(id, timestamp, growth, inflation, volatility, cause_type, cause_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		st.ID,
		encodeTime(st.Timestamp),
		st.Growth,
		st.Inflation,
		st.Volatility,
		string(st.CauseType),
		causeID,
	)
	if err != nil {
		return macro.State{}, fmt.Errorf("append state: %w", err)
	}
	return st, nil
}

// RecentStates returns the most recent limit history entries, ascending or
// descending by timestamp as requested.
func (s *Store) RecentStates(ctx context.Context, limit int, ascending bool) ([]macro.State, error) {
	// The newest rows are selected descending; ascending output reverses
	// the window rather than changing which rows are in it.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM macro_variables_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var states []macro.State
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	if ascending {
		for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
			states[i], states[j] = states[j], states[i]
		}
	}
	return states, nil
}

// SeedInitialState appends the seed entry the engine requires before any
// impact application. CauseType is forced to initial and CauseID cleared.
func (s *Store) SeedInitialState(ctx context.Context, st macro.State) (macro.State, error) {
	st.CauseType = macro.CauseInitial
	st.CauseID = ""
	return s.AppendState(ctx, st)
}

func scanState(sc scanner) (macro.State, error) {
	var (
		st           macro.State
		timestampStr string
		causeType    string
		causeID      sql.NullString
	)
	err := sc.Scan(&st.ID, &timestampStr, &st.Growth, &st.Inflation, &st.Volatility, &causeType, &causeID)
	if err == sql.ErrNoRows {
		return macro.State{}, err
	}
	if err != nil {
		return macro.State{}, fmt.Errorf("scan state: %w", err)
	}

	st.CauseType = macro.CauseType(causeType)
	if causeID.Valid {
		st.CauseID = causeID.String
	}
	if st.Timestamp, err = decodeTime(timestampStr); err != nil {
		return macro.State{}, err
	}
	return st, nil
}
