package strategy

import "errors"

var (
	ErrUnknownSignal      = errors.New("unknown signal")
	ErrInsufficientPrices = errors.New("not enough prices for indicator warmup")
)

// ScoreSource produces one raw score per close price. The score at index i
// only depends on closes[0..i]. Values before Lookback() are warmup and
// must be dropped before evaluation.
//
// Raw scores are signed: positive favours holding crypto, negative favours
// cash, and the magnitude is what the normalisation thresholds act on.
type ScoreSource interface {
	Name() string
	Lookback() int
	Score(symbol string, closes []float64) ([]float64, error)
}

const (
	SignalMomentum  = "momentum"
	SignalMACD      = "macd"
	SignalRSI       = "rsi"
	SignalBollinger = "bollinger"
	SignalEMACross  = "ema"
	SignalFile      = "file"
)
