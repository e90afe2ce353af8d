package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the JSON document compared against golden files.
// Struct fields marshal in declaration order, so the output is canonical
// without extra normalization.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEntry `json:"trace"`
}

// RunWithGolden executes a scenario and compares its trace against a
// golden file named after the scenario under testdata/golden/.
//
// Golden files serve as the source of truth for expected state
// trajectories. Regenerate them with `go test -update` after an
// intentional change to the evolution or classification rules.
//
// Returns an error if scenario execution fails; trace mismatches fail
// the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
	}
	traceJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
