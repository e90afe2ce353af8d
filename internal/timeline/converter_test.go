package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConverter_RealOffset(t *testing.T) {
	anchor := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := NewConverter(anchor, 2*time.Minute)

	tests := []struct {
		name    string
		simTime time.Time
		want    float64
	}{
		{"anchor itself", anchor, 0},
		{"one day later", anchor.Add(24 * time.Hour), 120},
		{"half a day later", anchor.Add(12 * time.Hour), 60},
		{"one hour later", anchor.Add(time.Hour), 5},
		{"before the anchor", anchor.Add(-24 * time.Hour), -120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, conv.RealOffset(tt.simTime), 1e-9)
		})
	}
}

func TestConverter_SimTime(t *testing.T) {
	anchor := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := NewConverter(anchor, 2*time.Minute)

	assert.Equal(t, anchor, conv.SimTime(0))
	assert.Equal(t, anchor.Add(24*time.Hour), conv.SimTime(120))
	assert.Equal(t, anchor.Add(6*time.Hour), conv.SimTime(30))
}

func TestConverter_RoundTrip(t *testing.T) {
	anchor := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := NewConverter(anchor, 90*time.Second)

	for _, offset := range []time.Duration{
		0,
		time.Hour,
		36 * time.Hour,
		17*time.Hour + 23*time.Minute,
	} {
		simTime := anchor.Add(offset)
		back := conv.SimTime(conv.RealOffset(simTime))
		assert.WithinDuration(t, simTime, back, time.Millisecond)
	}
}
