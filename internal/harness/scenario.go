package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a simulation conformance scenario.
// Scenarios validate the macro evolution rules by replaying a fixed
// timeline of events against a seeded state and asserting on the
// resulting state trajectory and final regime.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also used as the
	// golden file name for trace comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// InitialState is the seed macro state written before any event fires.
	InitialState StateFixture `yaml:"initial_state"`

	// Events is the timeline to replay, with explicit ids so traces are
	// deterministic. Events may be listed in any order; the scheduler
	// sorts them by scheduled time.
	Events []EventStep `yaml:"events"`

	// Expect validates the final state after all events have fired.
	// If nil, only successful execution is required.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// StateFixture is the seed state for a scenario.
type StateFixture struct {
	Growth     float64   `yaml:"growth"`
	Inflation  float64   `yaml:"inflation"`
	Volatility float64   `yaml:"volatility"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// EventStep is one timeline entry in a scenario.
type EventStep struct {
	// ID is a fixed identifier used in the trace. Required; scenario
	// events never get generated ids, so golden files stay stable.
	ID string `yaml:"id"`

	// Kind is "release" or "event".
	Kind string `yaml:"kind"`

	// Name labels the step: the release name or the event headline.
	Name string `yaml:"name"`

	// ScheduledAt is the simulation time the event fires at.
	ScheduledAt time.Time `yaml:"scheduled_at"`

	// Impact holds the signed deltas applied to the macro state.
	Impact ImpactStep `yaml:"impact"`
}

// ImpactStep holds the three signed deltas of an event.
type ImpactStep struct {
	Growth     float64 `yaml:"growth"`
	Inflation  float64 `yaml:"inflation"`
	Volatility float64 `yaml:"volatility"`
}

// ExpectClause specifies the expected final state and regime.
// Numeric fields are compared within a small tolerance; Regime matches
// the classifier label exactly. Nil numeric fields are not checked.
type ExpectClause struct {
	Growth     *float64 `yaml:"growth,omitempty"`
	Inflation  *float64 `yaml:"inflation,omitempty"`
	Volatility *float64 `yaml:"volatility,omitempty"`
	Regime     string   `yaml:"regime,omitempty"`
}

// Event kind names accepted in scenario files.
const (
	StepKindRelease = "release"
	StepKindEvent   = "event"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.InitialState.Timestamp.IsZero() {
		return fmt.Errorf("initial_state.timestamp is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Events))
	for i, step := range s.Events {
		if step.ID == "" {
			return fmt.Errorf("events[%d]: id is required", i)
		}
		if seen[step.ID] {
			return fmt.Errorf("events[%d]: duplicate id %q", i, step.ID)
		}
		seen[step.ID] = true

		if step.Kind != StepKindRelease && step.Kind != StepKindEvent {
			return fmt.Errorf("events[%d]: kind must be %q or %q, got %q",
				i, StepKindRelease, StepKindEvent, step.Kind)
		}
		if step.Name == "" {
			return fmt.Errorf("events[%d]: name is required", i)
		}
		if step.ScheduledAt.IsZero() {
			return fmt.Errorf("events[%d]: scheduled_at is required", i)
		}
	}

	return nil
}
