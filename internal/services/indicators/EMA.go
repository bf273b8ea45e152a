package indicators

import (
	"github.com/markcheno/go-talib"
)

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes EMA for the entire price series.
// Values before index period-1 are warmup and hold 0.
func (s *EMAService) Calculate(prices []float64, period int) []float64 {
	if !s.ValidatePeriod(prices, period) {
		return nil
	}
	return talib.Ema(prices, period)
}

func (s *EMAService) Lookback(period int) int {
	return period - 1
}

func (s *EMAService) ValidatePeriod(prices []float64, period int) bool {
	return period > 1 && len(prices) >= period
}
