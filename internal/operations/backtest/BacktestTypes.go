// backtest/types.go

package backtest

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptySeries         = errors.New("series is empty")
	ErrLengthMismatch      = errors.New("score and fractional price lengths differ")
	ErrInvalidThreshold    = errors.New("thresholds must satisfy 0 <= low < up")
	ErrInvalidFee          = errors.New("effective fee factor must be in [0, 1)")
	ErrDegenerateValuePath = errors.New("portfolio value path has a non-positive minimum")
)

// Defaults from the production settings of the evaluator
const (
	DefaultTransactionFee = 0.001
	DefaultBidAskSpread   = 0.0005

	// Unit starting capital, every path starts here
	InitialValue = 1.0
)

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Config is the strategy configuration. It is a value type: calibration
// produces a new Config instead of writing into a shared one.
type Config struct {
	TransactionFee float64
	BidAskSpread   float64

	// Dead-zone and saturation bounds for score normalisation
	LowThreshold float64
	UpThreshold  float64
}

// NewConfig creates default config with uncalibrated thresholds
func NewConfig() Config {
	return Config{
		TransactionFee: DefaultTransactionFee,
		BidAskSpread:   DefaultBidAskSpread,
	}
}

// FeeFactor is the effective rate paid on every converted notional.
func (c Config) FeeFactor() float64 {
	return c.TransactionFee + c.BidAskSpread
}

func (c Config) Thresholds() Thresholds {
	return Thresholds{Low: c.LowThreshold, Up: c.UpThreshold}
}

// WithThresholds returns a copy of the config using t.
func (c Config) WithThresholds(t Thresholds) Config {
	c.LowThreshold = t.Low
	c.UpThreshold = t.Up
	return c
}

func (c Config) validateFees() error {
	if c.TransactionFee < 0 || c.BidAskSpread < 0 {
		return fmt.Errorf("%w: fee=%v spread=%v", ErrInvalidFee, c.TransactionFee, c.BidAskSpread)
	}
	if f := c.FeeFactor(); f >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidFee, f)
	}
	return nil
}

type Thresholds struct {
	Low float64
	Up  float64
}

func (t Thresholds) Validate() error {
	if t.Up <= 0 || t.Low < 0 || t.Low >= t.Up {
		return fmt.Errorf("%w: low=%v up=%v", ErrInvalidThreshold, t.Low, t.Up)
	}
	return nil
}

// State is the two-bucket portfolio carried between steps
type State struct {
	Cash   float64
	Crypto float64
}

func (s State) Value() float64 {
	return s.Cash + s.Crypto
}

// Rebalance records one executed transfer between cash and crypto
type Rebalance struct {
	Step     int
	Side     string // "buy" or "sell"
	Notional float64
	Fee      float64
}

// PortfolioPath is the full output of a simulation run.
// Value[0] is the starting capital, so the entry fee shows only in
// Cash[0] + Crypto[0] == 1 - Score[0]*fee. From step 1 on
// Value[i] == Cash[i] + Crypto[i], measured after the step's rebalance and
// its fee. A fee-free mark taken before the rebalance would differ from this
// on steps that trade.
type PortfolioPath struct {
	Value  []float64
	Cash   []float64
	Crypto []float64

	// Normalised allocation actually used
	Score []float64

	Trades     int
	Rebalances []Rebalance
}

func (p *PortfolioPath) Len() int {
	return len(p.Value)
}

// FinalValue returns the last portfolio value, or 0 for an empty path
func (p *PortfolioPath) FinalValue() float64 {
	if len(p.Value) == 0 {
		return 0
	}
	return p.Value[len(p.Value)-1]
}

// Calibration is the outcome of a threshold search.
// Found is false when no candidate produced a trade; Thresholds then hold
// the prior values of the config that was searched.
type Calibration struct {
	Thresholds  Thresholds
	ProfitScore float64
	Trades      int
	Evaluated   int
	Found       bool
}

// Series is one aligned window of scores, fractional prices and close prices.
// Times is optional and holds the candle open times when known.
type Series struct {
	Scores     []float64
	Fractional []float64
	Prices     []float64
	Times      []time.Time
}

func (s Series) Len() int {
	return len(s.Scores)
}

// Metrics summarises a validation path
type Metrics struct {
	ProfitScore  float64
	Drawdown     float64
	MaxDrawdown  float64
	SharpeRatio  float64
	ProfitFactor float64
	FinalValue   float64
}

// Evaluation is the calibrate-then-validate result for one signal
type Evaluation struct {
	Signal      string
	Calibration Calibration
	Config      Config
	Validation  *PortfolioPath
	Metrics     Metrics

	// Window bounds, zero when the series carried no times
	CalibrationStart time.Time
	ValidationTimes  []time.Time
	ValidationPrices []float64
}
