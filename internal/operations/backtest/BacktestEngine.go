package backtest

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Candles per year for the supported timeframes, used to annualise Sharpe
var PeriodsPerYear = map[string]float64{
	"5m":  365 * 24 * 12,
	"15m": 365 * 24 * 4,
	"1h":  365 * 24,
	"4h":  365 * 6,
	"1d":  365,
}

// Signal is a named score series split into calibration and validation windows
type Signal struct {
	Name        string
	Calibration Series
	Validation  Series
}

// Comparison holds the primary signal evaluation next to an alternative
// (usually the simple momentum signal) run through the same pipeline.
type Comparison struct {
	Primary     *Evaluation
	Alternative *Evaluation
}

type Engine struct {
	optimizer      *Optimizer
	periodsPerYear float64
	log            zerolog.Logger
}

func NewEngine(optimizer *Optimizer, periodsPerYear float64, log zerolog.Logger) *Engine {
	return &Engine{
		optimizer:      optimizer,
		periodsPerYear: periodsPerYear,
		log:            log.With().Str("component", "backtest_engine").Logger(),
	}
}

// Evaluate calibrates the thresholds on the calibration window and replays the
// validation window with them. If calibration finds nothing and cfg carries
// no usable thresholds, the evaluation is returned without a validation path.
func (e *Engine) Evaluate(signal Signal, cfg Config) (*Evaluation, error) {
	calibration, err := e.optimizer.Optimize(signal.Calibration.Scores, signal.Calibration.Fractional, cfg)
	if err != nil {
		return nil, fmt.Errorf("calibrating %s: %w", signal.Name, err)
	}

	evaluation := &Evaluation{
		Signal:           signal.Name,
		Calibration:      calibration,
		Config:           cfg.WithThresholds(calibration.Thresholds),
		ValidationTimes:  signal.Validation.Times,
		ValidationPrices: signal.Validation.Prices,
	}
	if len(signal.Calibration.Times) > 0 {
		evaluation.CalibrationStart = signal.Calibration.Times[0]
	}

	logger := e.log.With().Str("signal", signal.Name).Logger()

	if !calibration.Found {
		logger.Warn().
			Int("evaluated", calibration.Evaluated).
			Float64("low", calibration.Thresholds.Low).
			Float64("up", calibration.Thresholds.Up).
			Msg("No trading threshold pair found, keeping prior thresholds")

		if calibration.Thresholds.Validate() != nil {
			return evaluation, nil
		}
	} else {
		logger.Debug().
			Int("evaluated", calibration.Evaluated).
			Float64("low", calibration.Thresholds.Low).
			Float64("up", calibration.Thresholds.Up).
			Float64("profit_score", calibration.ProfitScore).
			Int("trades", calibration.Trades).
			Msg("Thresholds calibrated")
	}

	path, err := SimulateStrategy(signal.Validation.Scores, signal.Validation.Fractional, evaluation.Config)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", signal.Name, err)
	}
	evaluation.Validation = path

	metrics, err := Score(path, signal.Validation.Prices, e.periodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("scoring %s: %w", signal.Name, err)
	}
	evaluation.Metrics = metrics

	logger.Info().
		Int("trades", path.Trades).
		Float64("final_value", metrics.FinalValue).
		Float64("profit_factor", metrics.ProfitFactor).
		Float64("max_drawdown", metrics.MaxDrawdown).
		Msg("Validation complete")

	return evaluation, nil
}

// Advantage is the final value of the primary minus that of the alternative.
// It is false when either side has no validation path.
func (c *Comparison) Advantage() (float64, bool) {
	if c.Primary == nil || c.Alternative == nil || c.Primary.Validation == nil || c.Alternative.Validation == nil {
		return 0, false
	}
	return c.Primary.Metrics.FinalValue - c.Alternative.Metrics.FinalValue, true
}

// Compare evaluates two signals with the same config
func (e *Engine) Compare(primary, alternative Signal, cfg Config) (*Comparison, error) {
	a, err := e.Evaluate(alternative, cfg)
	if err != nil {
		return nil, err
	}
	return e.CompareWith(primary, a, cfg)
}

// CompareWith evaluates primary against an alternative that was already
// evaluated, so one baseline can serve several primary signals.
func (e *Engine) CompareWith(primary Signal, alternative *Evaluation, cfg Config) (*Comparison, error) {
	p, err := e.Evaluate(primary, cfg)
	if err != nil {
		return nil, err
	}
	return &Comparison{Primary: p, Alternative: alternative}, nil
}
