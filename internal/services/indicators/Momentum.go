package indicators

import (
	"github.com/markcheno/go-talib"
)

// MomentumService computes the rate of change over a period as a fraction:
// (price - price[n-period]) / price[n-period]
type MomentumService struct{}

func NewMomentumService() *MomentumService {
	return &MomentumService{}
}

func (s *MomentumService) Calculate(prices []float64, period int) []float64 {
	if period < 1 || len(prices) <= period {
		return nil
	}
	return talib.Rocp(prices, period)
}

func (s *MomentumService) Lookback(period int) int {
	return period
}
