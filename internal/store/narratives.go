package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Narrative is a stored piece of generated commentary tied to a release or
// macro event.
type Narrative struct {
	ID            string
	Timestamp     time.Time
	NarrativeType string // pre_release | post_release | event
	Content       string
	ReferenceType string // release | event
	ReferenceID   string
}

// SaveNarrative stores a generated narrative and returns the stored record.
func (s *Store) SaveNarrative(ctx context.Context, n Narrative) (Narrative, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO narratives
		(id, timestamp, narrative_type, content, reference_type, reference_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		n.ID,
		encodeTime(n.Timestamp),
		n.NarrativeType,
		n.Content,
		n.ReferenceType,
		n.ReferenceID,
	)
	if err != nil {
		return Narrative{}, fmt.Errorf("save narrative: %w", err)
	}
	return n, nil
}

// NarrativesFor returns all narratives referencing a specific release or
// event, oldest first.
func (s *Store) NarrativesFor(ctx context.Context, referenceType, referenceID string) ([]Narrative, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, narrative_type, content, reference_type, reference_id
		FROM narratives
		WHERE reference_type = ? AND reference_id = ?
		ORDER BY timestamp ASC, id ASC
	`, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("query narratives: %w", err)
	}
	defer rows.Close()

	var narratives []Narrative
	for rows.Next() {
		var (
			n            Narrative
			timestampStr string
		)
		if err := rows.Scan(&n.ID, &timestampStr, &n.NarrativeType, &n.Content, &n.ReferenceType, &n.ReferenceID); err != nil {
			return nil, fmt.Errorf("scan narrative: %w", err)
		}
		if n.Timestamp, err = decodeTime(timestampStr); err != nil {
			return nil, err
		}
		narratives = append(narratives, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate narratives: %w", err)
	}
	return narratives, nil
}
