package indicators

import (
	"github.com/markcheno/go-talib"
)

type BBandsService struct{}

type BBandsResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
	Width  []float64 // Volatility indicator

	// Position of the price within the bands, 0 at lower and 1 at upper.
	// Not clamped: prices outside the bands fall outside [0, 1].
	PercentB []float64
}

func NewBBandsService() *BBandsService {
	return &BBandsService{}
}

func (s *BBandsService) Calculate(prices []float64, period int, deviations float64) *BBandsResult {
	if !s.ValidatePeriod(prices, period) {
		return nil
	}

	// MAType 0 = SMA
	upper, middle, lower := talib.BBands(prices, period, deviations, deviations, talib.SMA)

	width := make([]float64, len(prices))
	percentB := make([]float64, len(prices))
	for i := s.Lookback(period); i < len(prices); i++ {
		if middle[i] != 0 {
			width[i] = (upper[i] - lower[i]) / middle[i]
		}

		band := upper[i] - lower[i]
		if band == 0 {
			// Collapsed bands, price is at the middle
			percentB[i] = 0.5
			continue
		}
		percentB[i] = (prices[i] - lower[i]) / band
	}

	return &BBandsResult{
		Upper:    upper,
		Middle:   middle,
		Lower:    lower,
		Width:    width,
		PercentB: percentB,
	}
}

func (s *BBandsService) Lookback(period int) int {
	return period - 1
}

// ValidatePeriod checks if we have enough data
func (s *BBandsService) ValidatePeriod(prices []float64, period int) bool {
	return period > 1 && len(prices) >= period
}
