package backtest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomWalk(seed int64, n int) (scores, fractional []float64) {
	rng := rand.New(rand.NewSource(seed))
	scores = make([]float64, n)
	fractional = make([]float64, n)
	for i := 0; i < n; i++ {
		fractional[i] = 1 + rng.NormFloat64()*0.02
		// noisy look-ahead so that some thresholds clearly win
		scores[i] = (fractional[i]-1)*50 + rng.NormFloat64()
	}
	return scores, fractional
}

func TestOptimizer_GridIsLogSpaced(t *testing.T) {
	grid := NewOptimizer(ModeGrid).Grid()

	require.Len(t, grid, DefaultGridSize)
	assert.InDelta(t, DefaultGridMin, grid[0], 1e-12)
	assert.InDelta(t, DefaultGridMax, grid[len(grid)-1], 1e-9)

	ratio := grid[1] / grid[0]
	for i := 2; i < len(grid); i++ {
		assert.InDelta(t, ratio, grid[i]/grid[i-1], 1e-9)
	}
}

func TestOptimizer_CandidateOrder(t *testing.T) {
	o := NewOptimizer(ModeGrid)
	grid := o.Grid()
	candidates := o.Candidates()

	require.Len(t, candidates, DefaultGridSize*(DefaultGridSize-1)/2)
	assert.Equal(t, Thresholds{Low: grid[0], Up: grid[1]}, candidates[0])
	assert.Equal(t, Thresholds{Low: grid[0], Up: grid[2]}, candidates[1])
	assert.Equal(t, Thresholds{Low: grid[1], Up: grid[2]}, candidates[2])
	assert.Equal(t, Thresholds{Low: grid[48], Up: grid[49]}, candidates[len(candidates)-1])

	for _, c := range candidates {
		assert.Less(t, c.Low, c.Up)
	}
}

func TestOptimizer_FixedModeEvaluatesSinglePair(t *testing.T) {
	scores, fractional := randomWalk(7, 120)

	calibration, err := NewOptimizer(ModeFixed).Optimize(scores, fractional, NewConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, calibration.Evaluated)
	assert.True(t, calibration.Found)
	assert.Equal(t, FixedThresholds, calibration.Thresholds)
}

func TestOptimizer_SelectsBestTradingPair(t *testing.T) {
	scores, fractional := randomWalk(11, 150)
	cfg := NewConfig()

	o := &Optimizer{GridSize: 15, GridMin: DefaultGridMin, GridMax: DefaultGridMax, Mode: ModeGrid}
	calibration, err := o.Optimize(scores, fractional, cfg)
	require.NoError(t, err)
	require.True(t, calibration.Found)

	best := math.Inf(-1)
	var bestPair Thresholds
	for _, c := range o.Candidates() {
		path, err := SimulateStrategy(scores, fractional, cfg.WithThresholds(c))
		require.NoError(t, err)
		if path.Trades == 0 {
			continue
		}
		score, err := ProfitScore(path.Value, path.Trades)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, calibration.ProfitScore, score, "pair %+v beats the selection", c)
		if score > best {
			best = score
			bestPair = c
		}
	}

	assert.Equal(t, best, calibration.ProfitScore)
	assert.Equal(t, bestPair, calibration.Thresholds)
	assert.Equal(t, len(o.Candidates()), calibration.Evaluated)
}

func TestOptimizer_FirstCandidateWinsTies(t *testing.T) {
	// Scores far beyond every grid value saturate to 0 or 1 for all pairs,
	// so every candidate produces the same path.
	scores := []float64{1e4, -1e4, 1e4, -1e4, 1e4, -1e4}
	fractional := []float64{1.05, 0.97, 1.02, 1.01, 0.99, 1.0}

	o := NewOptimizer(ModeGrid)
	calibration, err := o.Optimize(scores, fractional, NewConfig())
	require.NoError(t, err)

	require.True(t, calibration.Found)
	assert.Equal(t, o.Candidates()[0], calibration.Thresholds)
}

func TestOptimizer_NoTradingCandidate(t *testing.T) {
	scores := []float64{0.3, 0.3, 0.3, 0.3}
	fractional := []float64{1.01, 0.99, 1.02, 1.0}
	prior := NewConfig().WithThresholds(Thresholds{Low: 0.2, Up: 0.7})

	calibration, err := NewOptimizer(ModeGrid).Optimize(scores, fractional, prior)
	require.NoError(t, err)

	assert.False(t, calibration.Found)
	assert.Equal(t, 0, calibration.Trades)
	assert.Equal(t, prior.Thresholds(), calibration.Thresholds)
}

func TestOptimizer_InvalidInput(t *testing.T) {
	o := NewOptimizer(ModeGrid)

	_, err := o.Optimize(nil, nil, NewConfig())
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = o.Optimize([]float64{1, 2}, []float64{1}, NewConfig())
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = o.Optimize([]float64{1, 2}, []float64{1, 1}, Config{TransactionFee: 1})
	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestParseSearchMode(t *testing.T) {
	mode, err := ParseSearchMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeGrid, mode)

	mode, err = ParseSearchMode("fixed")
	require.NoError(t, err)
	assert.Equal(t, ModeFixed, mode)

	_, err = ParseSearchMode("random")
	assert.Error(t, err)
}
