package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/store"
	"github.com/roach88/macrosim/internal/timeline"
)

// Fixtures is the YAML document consumed by the seed command: the initial
// macro state plus the calendar of releases and macro events for one
// simulation.
type Fixtures struct {
	InitialState *InitialStateFixture `yaml:"initial_state"`
	ReleaseTypes []ReleaseTypeFixture `yaml:"release_types"`
	Releases     []ReleaseFixture     `yaml:"releases"`
	Events       []EventFixture       `yaml:"events"`
}

// InitialStateFixture seeds the first macro history entry.
type InitialStateFixture struct {
	Timestamp  time.Time `yaml:"timestamp"`
	Growth     float64   `yaml:"growth"`
	Inflation  float64   `yaml:"inflation"`
	Volatility float64   `yaml:"volatility"`
}

// ReleaseTypeFixture declares a release category (GDP, NFP, CPI, ...).
type ReleaseTypeFixture struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// ImpactFixture holds the signed deltas an event applies when it fires.
type ImpactFixture struct {
	Growth     float64 `yaml:"growth"`
	Inflation  float64 `yaml:"inflation"`
	Volatility float64 `yaml:"volatility"`
}

// ReleaseFixture declares one economic release. Type references a
// release_types entry by code.
type ReleaseFixture struct {
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"`
	Date      time.Time     `yaml:"date"`
	Consensus float64       `yaml:"consensus"`
	Actual    *float64      `yaml:"actual"`
	Impact    ImpactFixture `yaml:"impact"`
}

// EventFixture declares one macro event.
type EventFixture struct {
	Headline string        `yaml:"headline"`
	Date     time.Time     `yaml:"date"`
	Impact   ImpactFixture `yaml:"impact"`
}

// LoadFixtures parses a fixtures file and validates cross-references.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid fixtures %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	types := make(map[string]bool, len(f.ReleaseTypes))
	for _, rt := range f.ReleaseTypes {
		if rt.Code == "" {
			return fmt.Errorf("release type with empty code")
		}
		if types[rt.Code] {
			return fmt.Errorf("duplicate release type code %q", rt.Code)
		}
		types[rt.Code] = true
	}

	for _, r := range f.Releases {
		if r.Name == "" {
			return fmt.Errorf("release with empty name")
		}
		if !types[r.Type] {
			return fmt.Errorf("release %q references unknown type %q", r.Name, r.Type)
		}
		if r.Date.IsZero() {
			return fmt.Errorf("release %q has no date", r.Name)
		}
	}

	for _, e := range f.Events {
		if e.Headline == "" {
			return fmt.Errorf("event with empty headline")
		}
		if e.Date.IsZero() {
			return fmt.Errorf("event %q has no date", e.Headline)
		}
	}

	return nil
}

// seedResult reports what a Seed call inserted.
type seedResult struct {
	ReleaseTypes int  `json:"release_types"`
	Releases     int  `json:"releases"`
	Events       int  `json:"events"`
	StateSeeded  bool `json:"state_seeded"`
}

// Seed inserts the fixtures into the store. The initial state is only
// written when the history is empty, so re-seeding a database never breaks
// the append-only history.
func (f *Fixtures) Seed(ctx context.Context, st *store.Store) (seedResult, error) {
	var res seedResult

	typeIDs := make(map[string]string, len(f.ReleaseTypes))
	for _, rt := range f.ReleaseTypes {
		stored, err := st.InsertReleaseType(ctx, store.ReleaseType{Code: rt.Code, Name: rt.Name})
		if err != nil {
			return res, err
		}
		typeIDs[rt.Code] = stored.ID
		res.ReleaseTypes++
	}

	for _, r := range f.Releases {
		ev := timeline.Event{
			Kind:             timeline.KindRelease,
			ScheduledAt:      r.Date,
			Name:             r.Name,
			ReleaseTypeID:    typeIDs[r.Type],
			Consensus:        r.Consensus,
			Actual:           r.Actual,
			ImpactGrowth:     r.Impact.Growth,
			ImpactInflation:  r.Impact.Inflation,
			ImpactVolatility: r.Impact.Volatility,
		}
		if _, err := st.InsertRelease(ctx, ev); err != nil {
			return res, err
		}
		res.Releases++
	}

	for _, e := range f.Events {
		ev := timeline.Event{
			Kind:             timeline.KindMacroEvent,
			ScheduledAt:      e.Date,
			Headline:         e.Headline,
			ImpactGrowth:     e.Impact.Growth,
			ImpactInflation:  e.Impact.Inflation,
			ImpactVolatility: e.Impact.Volatility,
		}
		if _, err := st.InsertMacroEvent(ctx, ev); err != nil {
			return res, err
		}
		res.Events++
	}

	if f.InitialState != nil {
		_, ok, err := st.LatestState(ctx)
		if err != nil {
			return res, err
		}
		if !ok {
			_, err := st.SeedInitialState(ctx, macro.State{
				Growth:     f.InitialState.Growth,
				Inflation:  f.InitialState.Inflation,
				Volatility: f.InitialState.Volatility,
				Timestamp:  f.InitialState.Timestamp,
			})
			if err != nil {
				return res, err
			}
			res.StateSeeded = true
		}
	}

	return res, nil
}
