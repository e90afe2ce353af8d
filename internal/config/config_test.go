package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "macrosim.db", cfg.DatabasePath)
	assert.Equal(t, 120, cfg.DayDurationSeconds)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 600, cfg.NarrativeMaxTokens)
	assert.Equal(t, 0.7, cfg.NarrativeTemperature)
	assert.Equal(t, 2*time.Minute, cfg.DayDuration())
	assert.False(t, cfg.NarrativesEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MACROSIM_DB", "/tmp/sim.db")
	t.Setenv("MACROSIM_DAY_DURATION", "30")
	t.Setenv("MACROSIM_OPENAI_API_KEY", "sk-test")
	t.Setenv("MACROSIM_MODEL", "gpt-4o")
	t.Setenv("MACROSIM_NARRATIVE_MAX_TOKENS", "800")
	t.Setenv("MACROSIM_NARRATIVE_TEMPERATURE", "1.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sim.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.DayDuration())
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 800, cfg.NarrativeMaxTokens)
	assert.Equal(t, 1.1, cfg.NarrativeTemperature)
	assert.True(t, cfg.NarrativesEnabled())
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("MACROSIM_DAY_DURATION", "two minutes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	valid := Config{
		DayDurationSeconds:   120,
		NarrativeMaxTokens:   600,
		NarrativeTemperature: 0.7,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero day duration", func(c *Config) { c.DayDurationSeconds = 0 }, "MACROSIM_DAY_DURATION"},
		{"negative day duration", func(c *Config) { c.DayDurationSeconds = -5 }, "MACROSIM_DAY_DURATION"},
		{"zero max tokens", func(c *Config) { c.NarrativeMaxTokens = 0 }, "MACROSIM_NARRATIVE_MAX_TOKENS"},
		{"negative temperature", func(c *Config) { c.NarrativeTemperature = -0.1 }, "MACROSIM_NARRATIVE_TEMPERATURE"},
		{"temperature above range", func(c *Config) { c.NarrativeTemperature = 2.5 }, "MACROSIM_NARRATIVE_TEMPERATURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
