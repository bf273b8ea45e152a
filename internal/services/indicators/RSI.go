package indicators

import (
	"github.com/markcheno/go-talib"
)

type RSIService struct{}

func NewRSIService() *RSIService {
	return &RSIService{}
}

// Calculate returns Wilder's RSI in [0, 100]; the first period values are 0
func (s *RSIService) Calculate(prices []float64, period int) []float64 {
	if period < 2 || len(prices) < period+1 {
		return nil
	}
	return talib.Rsi(prices, period)
}

func (s *RSIService) Lookback(period int) int {
	return period
}
