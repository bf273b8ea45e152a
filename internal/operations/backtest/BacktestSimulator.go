package backtest

import (
	"fmt"
	"math"
)

// Step advances the portfolio by one candle. The crypto bucket moves with
// the price, then the portfolio is rebalanced towards the new allocation.
// Buys are capped by the cash held and sells by the crypto held, so neither
// bucket can go negative. The fee is taken out of the converted notional.
// The returned Rebalance is nil when the allocation did not change.
func Step(prev State, prevScore, score, fractional, feeFactor float64) (State, *Rebalance) {
	next := State{
		Cash:   prev.Cash,
		Crypto: prev.Crypto * fractional,
	}

	delta := next.Value() * (score - prevScore)

	switch {
	case delta > 0:
		delta = math.Min(delta, next.Cash)
		fee := delta * feeFactor
		next.Cash -= delta
		next.Crypto += delta - fee
		return next, &Rebalance{Side: SideBuy, Notional: delta, Fee: fee}

	case delta < 0:
		delta = math.Min(-delta, next.Crypto)
		fee := delta * feeFactor
		next.Crypto -= delta
		next.Cash += delta - fee
		return next, &Rebalance{Side: SideSell, Notional: delta, Fee: fee}
	}

	return next, nil
}

// Simulate runs the portfolio over an already normalised allocation
// sequence. scores[i] and fractional[i] describe the same candle;
// fractional[i] is the price ratio from candle i to i+1.
func Simulate(scores, fractional []float64, cfg Config) (*PortfolioPath, error) {
	n := len(scores)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	if len(fractional) != n {
		return nil, fmt.Errorf("%w: %d scores, %d prices", ErrLengthMismatch, n, len(fractional))
	}
	if err := cfg.validateFees(); err != nil {
		return nil, err
	}

	feeFactor := cfg.FeeFactor()

	path := &PortfolioPath{
		Value:  make([]float64, n),
		Cash:   make([]float64, n),
		Crypto: make([]float64, n),
		Score:  make([]float64, n),
	}
	for i, s := range scores {
		path.Score[i] = math.Max(0, math.Min(1, s))
	}

	// Entry position pays the fee but is not a trade
	state := State{
		Cash:   InitialValue - path.Score[0],
		Crypto: path.Score[0] * (1 - feeFactor),
	}
	path.Cash[0] = state.Cash
	path.Crypto[0] = state.Crypto
	path.Value[0] = InitialValue

	for i := 1; i < n; i++ {
		var rebalance *Rebalance
		state, rebalance = Step(state, path.Score[i-1], path.Score[i], fractional[i-1], feeFactor)

		path.Cash[i] = state.Cash
		path.Crypto[i] = state.Crypto
		path.Value[i] = state.Value()

		if rebalance != nil {
			rebalance.Step = i
			path.Rebalances = append(path.Rebalances, *rebalance)
			path.Trades++
		}
	}

	return path, nil
}

// SimulateStrategy normalises a raw score with the config thresholds and
// simulates the resulting allocation.
func SimulateStrategy(raw, fractional []float64, cfg Config) (*PortfolioPath, error) {
	normalized, err := NormalizeScore(raw, cfg.LowThreshold, cfg.UpThreshold)
	if err != nil {
		return nil, err
	}
	return Simulate(normalized, fractional, cfg)
}
