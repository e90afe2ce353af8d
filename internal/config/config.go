// Package config loads process configuration from environment variables.
// The compression ratio and narrative tunables are explicit values handed
// to the components that need them - nothing reads ambient process state
// after startup.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all tunables for one simulation process.
type Config struct {
	// DatabasePath is the SQLite database file. CLI flags override it.
	DatabasePath string `env:"MACROSIM_DB" envDefault:"macrosim.db"`

	// DayDurationSeconds is the time compression: real seconds representing
	// one simulated day. Must be positive.
	DayDurationSeconds int `env:"MACROSIM_DAY_DURATION" envDefault:"120"`

	// OpenAIAPIKey enables narrative generation when set. Empty disables
	// narratives; the simulation itself runs either way.
	OpenAIAPIKey string `env:"MACROSIM_OPENAI_API_KEY"`

	// Model is the chat-completion model used for narratives.
	Model string `env:"MACROSIM_MODEL" envDefault:"gpt-4o-mini"`

	// NarrativeMaxTokens bounds each generated narrative (~400 words).
	NarrativeMaxTokens int `env:"MACROSIM_NARRATIVE_MAX_TOKENS" envDefault:"600"`

	// NarrativeTemperature is the sampling temperature for narratives.
	NarrativeTemperature float64 `env:"MACROSIM_NARRATIVE_TEMPERATURE" envDefault:"0.7"`
}

// Load parses and validates configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants that env parsing cannot express.
func (c Config) Validate() error {
	if c.DayDurationSeconds <= 0 {
		return fmt.Errorf("MACROSIM_DAY_DURATION must be positive, got %d", c.DayDurationSeconds)
	}
	if c.NarrativeMaxTokens <= 0 {
		return fmt.Errorf("MACROSIM_NARRATIVE_MAX_TOKENS must be positive, got %d", c.NarrativeMaxTokens)
	}
	if c.NarrativeTemperature < 0 || c.NarrativeTemperature > 2 {
		return fmt.Errorf("MACROSIM_NARRATIVE_TEMPERATURE must be in [0, 2], got %g", c.NarrativeTemperature)
	}
	return nil
}

// DayDuration returns the compression ratio as a duration.
func (c Config) DayDuration() time.Duration {
	return time.Duration(c.DayDurationSeconds) * time.Second
}

// NarrativesEnabled reports whether narrative generation is configured.
func (c Config) NarrativesEnabled() bool {
	return c.OpenAIAPIKey != ""
}
