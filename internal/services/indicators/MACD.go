package indicators

import (
	"github.com/markcheno/go-talib"
)

type MACDService struct{}

type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

func NewMACDService() *MACDService {
	return &MACDService{}
}

// Calculate returns MACD line, signal line, and histogram
// Default periods: fast=12, slow=26, signal=9
func (s *MACDService) Calculate(prices []float64, fastPeriod, slowPeriod, signalPeriod int) *MACDResult {
	if !s.ValidatePeriods(prices, fastPeriod, slowPeriod, signalPeriod) {
		return nil
	}

	macd, signal, hist := talib.Macd(prices, fastPeriod, slowPeriod, signalPeriod)
	return &MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: hist,
	}
}

// Lookback is the index of the first complete histogram value
func (s *MACDService) Lookback(slowPeriod, signalPeriod int) int {
	return slowPeriod + signalPeriod - 2
}

func (s *MACDService) ValidatePeriods(prices []float64, fastPeriod, slowPeriod, signalPeriod int) bool {
	minLength := slowPeriod + signalPeriod - 1
	return len(prices) >= minLength &&
		fastPeriod > 1 &&
		slowPeriod > fastPeriod &&
		signalPeriod > 1
}
