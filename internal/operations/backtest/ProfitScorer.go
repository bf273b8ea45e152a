package backtest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ProfitScore rates a value path as final value over the worst value reached.
// A path without trades is negated so that doing nothing never ranks well.
func ProfitScore(values []float64, trades int) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySeries
	}

	worst := floats.Min(values)
	if worst <= 0 {
		return 0, fmt.Errorf("%w: min=%v", ErrDegenerateValuePath, worst)
	}

	score := values[len(values)-1] / worst
	if trades == 0 {
		score = -score
	}
	return score, nil
}

// Drawdown is the mean of all consecutive value changes with upward moves
// counted as zero, i.e. the average loss per step.
func Drawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = math.Min(values[i]-values[i-1], 0)
	}
	return stat.Mean(diffs, nil)
}

// ProfitFactor is the strategy return relative to buy and hold over the same
// window: (value[last]*price[0]) / (value[0]*price[last]) - 1.
func ProfitFactor(values, prices []float64) (float64, error) {
	if len(values) == 0 || len(prices) == 0 {
		return 0, ErrEmptySeries
	}

	denominator := values[0] * prices[len(prices)-1]
	if denominator == 0 {
		return 0, errors.New("profit factor undefined for zero start value or end price")
	}
	return values[len(values)-1]*prices[0]/denominator - 1, nil
}

// MaxDrawdown returns the largest peak-to-trough fall as a fraction of the peak
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	maxDrawdown := 0.0
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			maxDrawdown = math.Max(maxDrawdown, (peak-v)/peak)
		}
	}
	return maxDrawdown
}

// SharpeRatio annualises the mean/std of step returns.
// periodsPerYear depends on the candle size (8760 for hourly candles).
func SharpeRatio(values []float64, periodsPerYear float64) float64 {
	if len(values) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	mean, stdDev := stat.MeanStdDev(returns, nil)
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(periodsPerYear)
}

// PricesFromFractional rebuilds a price path of len(fractional)+1 points
func PricesFromFractional(start float64, fractional []float64) []float64 {
	prices := make([]float64, len(fractional)+1)
	prices[0] = start
	for i, f := range fractional {
		prices[i+1] = prices[i] * f
	}
	return prices
}

// Score computes the validation metrics of a simulated path
func Score(path *PortfolioPath, prices []float64, periodsPerYear float64) (Metrics, error) {
	profitScore, err := ProfitScore(path.Value, path.Trades)
	if err != nil {
		return Metrics{}, err
	}
	profitFactor, err := ProfitFactor(path.Value, prices)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		ProfitScore:  profitScore,
		Drawdown:     Drawdown(path.Value),
		MaxDrawdown:  MaxDrawdown(path.Value),
		SharpeRatio:  SharpeRatio(path.Value, periodsPerYear),
		ProfitFactor: profitFactor,
		FinalValue:   path.FinalValue(),
	}, nil
}
