package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCommand runs the root command with the given format and args.
func execCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--format", format}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

// seededDB seeds a database from the shared fixtures and returns its path.
func seededDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	fixturesPath := writeTestFixtures(t, dir)
	_, err := execSeed(t, dbPath, fixturesPath)
	require.NoError(t, err)
	return dbPath
}

func TestStatusCommand_Seeded(t *testing.T) {
	dbPath := seededDB(t)

	out, err := execCommand(t, "text", "status", "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Simulation data:")
	assert.Contains(t, out, "Releases:  2 total, 2 pending")
	assert.Contains(t, out, "Current macro state:")
	assert.Contains(t, out, "Regime:     Expansion")
}

func TestStatusCommand_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, err := execCommand(t, "text", "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No macro state yet")
}

func TestStatusCommand_JSON(t *testing.T) {
	dbPath := seededDB(t)

	out, err := execCommand(t, "json", "status", "--db", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "stats")
	state, ok := data["state"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2.0, state["Growth"])
	assert.Contains(t, data["regime"], "Expansion")
}

func TestTimelineCommand(t *testing.T) {
	dbPath := seededDB(t)

	out, err := execCommand(t, "text", "timeline", "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Timeline summary:")
	assert.Contains(t, out, "Total events: 3 (2 releases, 1 macro events)")
	assert.Contains(t, out, "2025-03-01 12:00 to 2025-03-03 10:00")
}

func TestTimelineCommand_JSON(t *testing.T) {
	dbPath := seededDB(t)

	out, err := execCommand(t, "json", "timeline", "--db", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, data["total"])
	assert.EqualValues(t, 2, data["releases"])
	assert.EqualValues(t, 1, data["macro_events"])
}

func TestHistoryCommand(t *testing.T) {
	dbPath := seededDB(t)

	out, err := execCommand(t, "text", "history", "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "growth=+2.00 inflation=+2.00 volatility=10.00")
	assert.Contains(t, out, "regime=Expansion")
	assert.Contains(t, out, "(initial)")
}

func TestHistoryCommand_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, err := execCommand(t, "text", "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "History is empty")
}
