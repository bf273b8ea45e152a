package strategy

import (
	"fmt"

	"CryptoStrategyEval/internal/services/indicators"
)

// MomentumSource scores the fractional price change over a period
type MomentumSource struct {
	period  int
	service *indicators.MomentumService
}

func NewMomentumSource(period int) *MomentumSource {
	return &MomentumSource{period: period, service: indicators.NewMomentumService()}
}

func (s *MomentumSource) Name() string { return SignalMomentum }

func (s *MomentumSource) Lookback() int { return s.service.Lookback(s.period) }

func (s *MomentumSource) Score(_ string, closes []float64) ([]float64, error) {
	roc := s.service.Calculate(closes, s.period)
	if roc == nil {
		return nil, fmt.Errorf("%w: momentum(%d) on %d closes", ErrInsufficientPrices, s.period, len(closes))
	}
	return roc, nil
}

// MACDSource scores the MACD histogram relative to the close price
type MACDSource struct {
	fast, slow, signal int
	service            *indicators.MACDService
}

func NewMACDSource(fast, slow, signal int) *MACDSource {
	return &MACDSource{fast: fast, slow: slow, signal: signal, service: indicators.NewMACDService()}
}

func (s *MACDSource) Name() string { return SignalMACD }

func (s *MACDSource) Lookback() int { return s.service.Lookback(s.slow, s.signal) }

func (s *MACDSource) Score(_ string, closes []float64) ([]float64, error) {
	result := s.service.Calculate(closes, s.fast, s.slow, s.signal)
	if result == nil {
		return nil, fmt.Errorf("%w: macd(%d,%d,%d) on %d closes", ErrInsufficientPrices, s.fast, s.slow, s.signal, len(closes))
	}

	scores := make([]float64, len(closes))
	for i := s.Lookback(); i < len(closes); i++ {
		scores[i] = result.Histogram[i] / closes[i]
	}
	return scores, nil
}

// RSISource maps RSI onto [-1, 1], 0 at the neutral level of 50
type RSISource struct {
	period  int
	service *indicators.RSIService
}

func NewRSISource(period int) *RSISource {
	return &RSISource{period: period, service: indicators.NewRSIService()}
}

func (s *RSISource) Name() string { return SignalRSI }

func (s *RSISource) Lookback() int { return s.service.Lookback(s.period) }

func (s *RSISource) Score(_ string, closes []float64) ([]float64, error) {
	rsi := s.service.Calculate(closes, s.period)
	if rsi == nil {
		return nil, fmt.Errorf("%w: rsi(%d) on %d closes", ErrInsufficientPrices, s.period, len(closes))
	}

	scores := make([]float64, len(closes))
	for i := s.Lookback(); i < len(closes); i++ {
		scores[i] = (rsi[i] - 50) / 50
	}
	return scores, nil
}

// BollingerSource scores the distance from the middle band in band widths:
// 0 at the middle, 1 at the upper band, -1 at the lower band.
type BollingerSource struct {
	period     int
	deviations float64
	service    *indicators.BBandsService
}

func NewBollingerSource(period int, deviations float64) *BollingerSource {
	return &BollingerSource{period: period, deviations: deviations, service: indicators.NewBBandsService()}
}

func (s *BollingerSource) Name() string { return SignalBollinger }

func (s *BollingerSource) Lookback() int { return s.service.Lookback(s.period) }

func (s *BollingerSource) Score(_ string, closes []float64) ([]float64, error) {
	bands := s.service.Calculate(closes, s.period, s.deviations)
	if bands == nil {
		return nil, fmt.Errorf("%w: bollinger(%d) on %d closes", ErrInsufficientPrices, s.period, len(closes))
	}

	scores := make([]float64, len(closes))
	for i := s.Lookback(); i < len(closes); i++ {
		scores[i] = 2 * (bands.PercentB[i] - 0.5)
	}
	return scores, nil
}

// EMACrossSource scores the spread between a fast and a slow EMA
type EMACrossSource struct {
	fast, slow int
	service    *indicators.EMAService
}

func NewEMACrossSource(fast, slow int) *EMACrossSource {
	return &EMACrossSource{fast: fast, slow: slow, service: indicators.NewEMAService()}
}

func (s *EMACrossSource) Name() string { return SignalEMACross }

func (s *EMACrossSource) Lookback() int { return s.service.Lookback(s.slow) }

func (s *EMACrossSource) Score(_ string, closes []float64) ([]float64, error) {
	fast := s.service.Calculate(closes, s.fast)
	slow := s.service.Calculate(closes, s.slow)
	if fast == nil || slow == nil {
		return nil, fmt.Errorf("%w: ema(%d,%d) on %d closes", ErrInsufficientPrices, s.fast, s.slow, len(closes))
	}

	scores := make([]float64, len(closes))
	for i := s.Lookback(); i < len(closes); i++ {
		scores[i] = (fast[i] - slow[i]) / slow[i]
	}
	return scores, nil
}
