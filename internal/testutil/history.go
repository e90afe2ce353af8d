package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/macrosim/internal/macro"
)

// MemHistory is an in-memory macro.HistoryStore for tests and scenario
// runs. Entries are kept in timestamp order; ids are generated
// sequentially for deterministic traces.
type MemHistory struct {
	mu     sync.Mutex
	states []macro.State
	nextID int
}

// NewMemHistory creates an empty history.
func NewMemHistory() *MemHistory {
	return &MemHistory{}
}

// LatestState returns the most-recent-by-timestamp entry.
func (h *MemHistory) LatestState(ctx context.Context) (macro.State, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.states) == 0 {
		return macro.State{}, false, nil
	}
	return h.states[len(h.states)-1], true, nil
}

// AppendState stores a new entry with a generated sequential id.
func (h *MemHistory) AppendState(ctx context.Context, s macro.State) (macro.State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s.ID = fmt.Sprintf("state-%d", h.nextID)
	h.states = append(h.states, s)

	// Keep timestamp order even if a caller back-dates an entry.
	sort.SliceStable(h.states, func(i, j int) bool {
		return h.states[i].Timestamp.Before(h.states[j].Timestamp)
	})
	return s, nil
}

// RecentStates returns the most recent limit entries in the requested order.
func (h *MemHistory) RecentStates(ctx context.Context, limit int, ascending bool) ([]macro.State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := min(limit, len(h.states))
	window := h.states[len(h.states)-n:]

	out := make([]macro.State, n)
	copy(out, window)
	if !ascending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// All returns every entry ascending by timestamp.
func (h *MemHistory) All() []macro.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]macro.State, len(h.states))
	copy(out, h.states)
	return out
}
