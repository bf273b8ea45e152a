package backtest

import "math"

// NormalizeScore maps a raw score into a [0, 1] target allocation.
// Values are clamped to [-up, up], values with |v| < low are zeroed, and the
// result is rescaled so that 0.5 is neutral, 0 all cash and 1 all crypto.
// The input slice is left untouched.
func NormalizeScore(scores []float64, low, up float64) ([]float64, error) {
	if err := (Thresholds{Low: low, Up: up}).Validate(); err != nil {
		return nil, err
	}

	normalized := make([]float64, len(scores))
	for i, v := range scores {
		v = math.Max(-up, math.Min(up, v))
		if math.Abs(v) < low {
			v = 0
		}
		normalized[i] = v/(2*up) + 0.5
	}
	return normalized, nil
}
