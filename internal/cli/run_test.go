package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/macrosim/internal/store"
	"github.com/roach88/macrosim/internal/timeline"
)

func TestRunCommand_MissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--fast"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "db")
}

func TestRunCommand_Flags(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	for _, name := range []string{"db", "fast", "no-color"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s should exist", name)
	}
	assert.Equal(t, "false", cmd.Flags().Lookup("fast").DefValue)
}

func TestRunCommand_UnseededStateFails(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	// Events exist but the macro history was never seeded.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.InsertMacroEvent(context.Background(), timeline.Event{
		Kind:        timeline.KindMacroEvent,
		Headline:    "Orphan headline",
		ScheduledAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--fast", "--no-color"})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "simulation failed")
}

func TestRunCommand_FastEndToEnd(t *testing.T) {
	dbPath := seededDB(t)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--fast", "--no-color"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "MACRO TRADING SIMULATOR")
	assert.Contains(t, out, "ECONOMIC RELEASE: GDP Advance Estimate")
	assert.Contains(t, out, "MACRO EVENT: Oil embargo announced by major exporters")
	assert.Contains(t, out, "Simulation complete")

	// All events consumed; a second run has nothing left to do.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FutureReleases)
	assert.Equal(t, 0, stats.FutureEvents)
	// Seed state plus one entry per fired event.
	assert.Equal(t, 4, stats.HistoryRecords)
}
