package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitScore(t *testing.T) {
	values := []float64{1, 0.5, 2}

	score, err := ProfitScore(values, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, score, tolerance)

	score, err = ProfitScore(values, 0)
	require.NoError(t, err)
	assert.InDelta(t, -4.0, score, tolerance, "no-trade paths are negated")
}

func TestProfitScore_DegenerateInput(t *testing.T) {
	_, err := ProfitScore(nil, 1)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = ProfitScore([]float64{1, 0, 2}, 1)
	assert.ErrorIs(t, err, ErrDegenerateValuePath)
}

func TestDrawdown(t *testing.T) {
	assert.InDelta(t, -0.2/3, Drawdown([]float64{1, 0.9, 1.1, 1.0}), tolerance)
	assert.Equal(t, 0.0, Drawdown([]float64{1, 1.1, 1.2}))
	assert.Equal(t, 0.0, Drawdown([]float64{1}))
}

func TestProfitFactor(t *testing.T) {
	factor, err := ProfitFactor([]float64{1, 1.05, 1.2}, []float64{100, 90, 110})
	require.NoError(t, err)
	assert.InDelta(t, 1.2*100/110-1, factor, tolerance)

	// Buy and hold of the asset itself has no excess return
	prices := []float64{50, 55, 60}
	values := []float64{1, 1.1, 1.2}
	factor, err = ProfitFactor(values, prices)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, factor, tolerance)

	_, err = ProfitFactor(nil, prices)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = ProfitFactor(values, []float64{50, 0})
	assert.Error(t, err)
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 0.5, MaxDrawdown([]float64{1, 2, 1, 3}), tolerance)
	assert.Equal(t, 0.0, MaxDrawdown([]float64{1, 2, 3}))
}

func TestSharpeRatio(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio([]float64{1, 2, 4, 8}, 365), "constant returns have no deviation")
	assert.Greater(t, SharpeRatio([]float64{1, 1.1, 1.12, 1.3, 1.31}, 365), 0.0)
	assert.Less(t, SharpeRatio([]float64{1, 0.9, 0.88, 0.7, 0.69}, 365), 0.0)
}

func TestPricesFromFractional(t *testing.T) {
	assert.InDeltaSlice(t, []float64{100, 110, 55}, PricesFromFractional(100, []float64{1.1, 0.5}), tolerance)
}

func TestScore(t *testing.T) {
	path, err := Simulate([]float64{0.5, 1, 1, 0}, []float64{1.1, 1.1, 0.9, 1}, zeroFeeConfig())
	require.NoError(t, err)

	prices := PricesFromFractional(100, []float64{1.1, 1.1, 0.9})
	metrics, err := Score(path, prices, 365)
	require.NoError(t, err)

	assert.Equal(t, path.FinalValue(), metrics.FinalValue)
	expectedFactor, _ := ProfitFactor(path.Value, prices)
	assert.Equal(t, expectedFactor, metrics.ProfitFactor)
	assert.Greater(t, metrics.ProfitScore, 0.0)
}
