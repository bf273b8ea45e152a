package backtest

import (
	"fmt"

	lop "github.com/samber/lo/parallel"
	"gonum.org/v1/gonum/floats"
)

type SearchMode string

const (
	// ModeGrid searches every low < up pair of the threshold grid
	ModeGrid SearchMode = "grid"
	// ModeFixed evaluates only FixedThresholds, the pair the deployed
	// evaluator has been trading with
	ModeFixed SearchMode = "fixed"
)

var FixedThresholds = Thresholds{Low: 0.1, Up: 0.9}

const (
	DefaultGridSize = 50
	DefaultGridMin  = 1e-4
	DefaultGridMax  = 1e2
)

func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case "", ModeGrid:
		return ModeGrid, nil
	case ModeFixed:
		return ModeFixed, nil
	}
	return "", fmt.Errorf("unknown threshold search mode %q", s)
}

type Optimizer struct {
	GridSize int
	GridMin  float64
	GridMax  float64
	Mode     SearchMode
}

func NewOptimizer(mode SearchMode) *Optimizer {
	return &Optimizer{
		GridSize: DefaultGridSize,
		GridMin:  DefaultGridMin,
		GridMax:  DefaultGridMax,
		Mode:     mode,
	}
}

type candidateResult struct {
	thresholds  Thresholds
	profitScore float64
	trades      int
	err         error
}

// Grid returns the log-spaced threshold magnitudes in ascending order
func (o *Optimizer) Grid() []float64 {
	if o.GridSize < 2 {
		return nil
	}
	return floats.LogSpan(make([]float64, o.GridSize), o.GridMin, o.GridMax)
}

// Candidates lists threshold pairs in search order: up ascending, and for
// each up every smaller grid value as low, ascending.
func (o *Optimizer) Candidates() []Thresholds {
	if o.Mode == ModeFixed {
		return []Thresholds{FixedThresholds}
	}

	grid := o.Grid()
	candidates := make([]Thresholds, 0, len(grid)*(len(grid)-1)/2)
	for i, up := range grid {
		for _, low := range grid[:i] {
			candidates = append(candidates, Thresholds{Low: low, Up: up})
		}
	}
	return candidates
}

// Optimize finds the thresholds with the highest profit score among the
// candidates that trade at least once. Candidates are evaluated in parallel
// but selected in search order, so the earliest candidate wins ties.
// When nothing trades the returned Calibration has Found == false and keeps
// the thresholds of cfg.
func (o *Optimizer) Optimize(scores, fractional []float64, cfg Config) (Calibration, error) {
	if len(scores) == 0 {
		return Calibration{}, ErrEmptySeries
	}
	if len(scores) != len(fractional) {
		return Calibration{}, fmt.Errorf("%w: %d scores, %d prices", ErrLengthMismatch, len(scores), len(fractional))
	}
	if err := cfg.validateFees(); err != nil {
		return Calibration{}, err
	}

	candidates := o.Candidates()

	results := lop.Map(candidates, func(t Thresholds, _ int) candidateResult {
		return evaluateCandidate(scores, fractional, cfg.WithThresholds(t))
	})

	calibration := Calibration{
		Thresholds: cfg.Thresholds(),
		Evaluated:  len(results),
	}

	for _, r := range results {
		if r.err != nil {
			return Calibration{}, fmt.Errorf("evaluating thresholds low=%v up=%v: %w",
				r.thresholds.Low, r.thresholds.Up, r.err)
		}
		if r.trades == 0 {
			continue
		}
		if !calibration.Found || r.profitScore > calibration.ProfitScore {
			calibration.Thresholds = r.thresholds
			calibration.ProfitScore = r.profitScore
			calibration.Trades = r.trades
			calibration.Found = true
		}
	}

	return calibration, nil
}

func evaluateCandidate(scores, fractional []float64, cfg Config) candidateResult {
	result := candidateResult{thresholds: cfg.Thresholds()}

	path, err := SimulateStrategy(scores, fractional, cfg)
	if err != nil {
		result.err = err
		return result
	}

	result.trades = path.Trades
	result.profitScore, result.err = ProfitScore(path.Value, path.Trades)
	return result
}
