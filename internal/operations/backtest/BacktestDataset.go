package backtest

import (
	"errors"
	"fmt"
	"time"
)

// Minimum number of points in each window after a split
const MinWindowSize = 2

// Dataset aligns candles with the price ratio to the next candle.
// For M candles it holds M-1 points: the last candle only provides the
// closing ratio of the one before it.
type Dataset struct {
	Times      []time.Time
	Closes     []float64
	Fractional []float64
	Scores     []float64
}

func NewDataset(times []time.Time, closes []float64) (*Dataset, error) {
	if len(times) != len(closes) {
		return nil, fmt.Errorf("%w: %d times, %d closes", ErrLengthMismatch, len(times), len(closes))
	}
	if len(closes) < 2 {
		return nil, errors.New("dataset needs at least two candles")
	}

	for i, c := range closes {
		if c <= 0 {
			return nil, fmt.Errorf("non-positive close %v at %s", c, times[i].Format(time.RFC3339))
		}
	}

	n := len(closes) - 1
	ds := &Dataset{
		Times:      append([]time.Time(nil), times[:n]...),
		Closes:     append([]float64(nil), closes[:n]...),
		Fractional: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		ds.Fractional[i] = closes[i+1] / closes[i]
	}

	return ds, nil
}

func (d *Dataset) Len() int {
	return len(d.Fractional)
}

// WithScores returns a copy of the dataset carrying scores
func (d *Dataset) WithScores(scores []float64) (*Dataset, error) {
	if len(scores) != d.Len() {
		return nil, fmt.Errorf("%w: %d scores for %d points", ErrLengthMismatch, len(scores), d.Len())
	}
	out := *d
	out.Scores = scores
	return &out, nil
}

// Trim drops the first n points, typically an indicator warmup
func (d *Dataset) Trim(n int) (*Dataset, error) {
	if n < 0 || n >= d.Len() {
		return nil, fmt.Errorf("cannot trim %d of %d points", n, d.Len())
	}
	out := &Dataset{
		Times:      d.Times[n:],
		Closes:     d.Closes[n:],
		Fractional: d.Fractional[n:],
	}
	if d.Scores != nil {
		out.Scores = d.Scores[n:]
	}
	return out, nil
}

func (d *Dataset) series(start, end int) Series {
	return Series{
		Scores:     d.Scores[start:end],
		Fractional: d.Fractional[start:end],
		Prices:     d.Closes[start:end],
		Times:      d.Times[start:end],
	}
}

// Split cuts the dataset into a leading calibration window holding fraction
// of the points and a disjoint validation window with the rest.
func (d *Dataset) Split(fraction float64) (Series, Series, error) {
	if d.Scores == nil {
		return Series{}, Series{}, errors.New("dataset has no scores")
	}
	if fraction <= 0 || fraction >= 1 {
		return Series{}, Series{}, fmt.Errorf("calibration fraction %v outside (0, 1)", fraction)
	}

	n := d.Len()
	k := int(fraction * float64(n))
	if k < MinWindowSize || n-k < MinWindowSize {
		return Series{}, Series{}, fmt.Errorf("cannot split %d points at %v: windows of %d and %d", n, fraction, k, n-k)
	}

	return d.series(0, k), d.series(k, n), nil
}

// ValidationStart is the time of the first validation point for fraction
func (d *Dataset) ValidationStart(fraction float64) time.Time {
	k := int(fraction * float64(d.Len()))
	if k < 0 || k >= d.Len() {
		return time.Time{}
	}
	return d.Times[k]
}
