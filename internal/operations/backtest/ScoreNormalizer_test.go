package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScore_ClampDeadZoneAndRescale(t *testing.T) {
	raw := []float64{-5, -0.05, 0, 0.05, 0.5, 5}
	original := append([]float64(nil), raw...)

	normalized, err := NormalizeScore(raw, 0.1, 1)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 0.5, 0.5, 0.5, 0.75, 1}, normalized, tolerance)
	assert.Equal(t, original, raw, "input must not be modified")
}

func TestNormalizeScore_LargeUpThresholdIsLinear(t *testing.T) {
	const up = 1e6
	raw := []float64{-3, -0.25, 0, 0.25, 3, 1234.5}

	normalized, err := NormalizeScore(raw, 0, up)
	require.NoError(t, err)

	for i, v := range raw {
		assert.InDelta(t, 0.5+v/(2*up), normalized[i], tolerance)
	}
}

func TestNormalizeScore_BoundaryAtLowThreshold(t *testing.T) {
	normalized, err := NormalizeScore([]float64{0.1, -0.1}, 0.1, 0.2)
	require.NoError(t, err)

	// |v| == low is outside the dead zone
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, normalized, tolerance)
}

func TestNormalizeScore_InvalidThresholds(t *testing.T) {
	tests := []struct {
		name    string
		low, up float64
	}{
		{name: "zero up", low: 0, up: 0},
		{name: "negative up", low: 0, up: -1},
		{name: "low equals up", low: 1, up: 1},
		{name: "low above up", low: 2, up: 1},
		{name: "negative low", low: -0.1, up: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeScore([]float64{1}, tt.low, tt.up)
			assert.ErrorIs(t, err, ErrInvalidThreshold)
		})
	}
}

func TestNormalizeScore_Empty(t *testing.T) {
	normalized, err := NormalizeScore(nil, 0.1, 1)
	require.NoError(t, err)
	assert.Empty(t, normalized)
}
