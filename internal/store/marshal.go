package store

import (
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 text in UTC. Text ordering of this
// format matches chronological ordering, which the date-sorted queries
// rely on.
const timeLayout = time.RFC3339Nano

// encodeTime renders a timestamp for storage.
func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// decodeTime parses a stored timestamp.
func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
