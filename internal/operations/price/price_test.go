package price

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"CryptoStrategyEval/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKlines struct {
	step  time.Duration
	calls int
	err   error
}

func (f *fakeKlines) GetKlines(_ context.Context, _, _ string, startTime, endTime int64) ([]*futures.Kline, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	step := f.step.Milliseconds()
	first := (startTime + step - 1) / step * step

	var klines []*futures.Kline
	for t := first; t <= endTime; t += step {
		c := strconv.FormatInt(100+t/step%50, 10)
		klines = append(klines, &futures.Kline{
			OpenTime:  t,
			CloseTime: t + step - 1,
			Open:      "100.00000000",
			High:      "151.5",
			Low:       "99.25",
			Close:     c,
			Volume:    "12.345",
			TradeNum:  7,
		})
	}
	return klines, nil
}

type fakeStore struct {
	latest *models.Price
	saved  []models.Price
}

func (s *fakeStore) DeleteBefore(symbol, _ string, cutoff time.Time) (int64, error) {
	var kept []models.Price
	var n int64
	for _, p := range s.saved {
		if p.Symbol == symbol && p.OpenTime.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, p)
	}
	s.saved = kept
	return n, nil
}

func (s *fakeStore) CountByTimeFrame(symbol, _ string) (int64, error) {
	var n int64
	for _, p := range s.saved {
		if p.Symbol == symbol {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) SaveBatch(prices []models.Price) error {
	s.saved = append(s.saved, prices...)
	return nil
}

func (s *fakeStore) GetLatestPriceByTimeFrame(_, _ string) (*models.Price, error) {
	return s.latest, nil
}

func newFetcher(src KlineSource, now time.Time) *PriceFetcher {
	f := NewPriceFetcher(src, zerolog.Nop())
	f.now = func() time.Time { return now }
	return f
}

func TestKlineToPrice(t *testing.T) {
	open := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	k := &futures.Kline{
		OpenTime:  open.UnixMilli(),
		CloseTime: open.Add(time.Hour).UnixMilli() - 1,
		Open:      "61234.10",
		High:      "61500.00",
		Low:       "61000.55",
		Close:     "61444.90",
		Volume:    "1234.567",
		TradeNum:  42,
	}

	p, err := KlineToPrice("BTCUSDT", "1h", k)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", p.Symbol)
	assert.Equal(t, "1h", p.TimeFrame)
	assert.Equal(t, open, p.OpenTime)
	assert.Equal(t, 61234.10, p.Open)
	assert.Equal(t, 61444.90, p.Close)
	assert.Equal(t, 1234.567, p.Volume)
	assert.Equal(t, int64(42), p.TradeCount)
}

func TestKlineToPrice_InvalidInput(t *testing.T) {
	_, err := KlineToPrice("BTCUSDT", "1h", nil)
	assert.Error(t, err)

	_, err = KlineToPrice("BTCUSDT", "1h", &futures.Kline{Open: "x", High: "1", Low: "1", Close: "1", Volume: "1"})
	assert.Error(t, err)

	_, err = KlineToPrice("BTCUSDT", "1h", &futures.Kline{Open: "1", High: "1", Low: "1", Close: "0", Volume: "1"})
	assert.Error(t, err)
}

func TestInterval(t *testing.T) {
	d, err := Interval("4h")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, d)

	_, err = Interval("3m")
	assert.Error(t, err)
}

func TestFetchRange_SkipsOpenCandle(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(48*time.Hour + 30*time.Minute)
	src := &fakeKlines{step: time.Hour}

	prices, err := newFetcher(src, now).FetchRange(context.Background(), "BTCUSDT", "1h", start, now.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, prices, 48)
	assert.Equal(t, start, prices[0].OpenTime)
	assert.Equal(t, start.Add(47*time.Hour), prices[47].OpenTime)
	for i := 1; i < len(prices); i++ {
		assert.True(t, prices[i].OpenTime.After(prices[i-1].OpenTime))
	}
}

func TestFetchRange_Chunks(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 10)
	src := &fakeKlines{step: 5 * time.Minute}

	prices, err := newFetcher(src, now).FetchRange(context.Background(), "ETHUSDT", "5m", start, now)
	require.NoError(t, err)

	assert.Equal(t, 3, src.calls)
	assert.Len(t, prices, 10*24*12)
}

func TestFetchRange_PropagatesErrors(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	src := &fakeKlines{step: time.Hour, err: errors.New("boom")}

	_, err := newFetcher(src, now).FetchPrices(context.Background(), "BTCUSDT", "1h", 1)
	assert.Error(t, err)

	_, err = newFetcher(src, now).FetchPrices(context.Background(), "BTCUSDT", "2h", 1)
	assert.Error(t, err)
}

func TestRecorder_SyncSymbol(t *testing.T) {
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	src := &fakeKlines{step: time.Hour}
	fetcher := newFetcher(src, now)

	t.Run("backfills an empty store", func(t *testing.T) {
		store := &fakeStore{}
		n, err := NewPriceRecorder(fetcher, store, []string{"BTCUSDT"}, "1h", 1, zerolog.Nop()).SyncSymbol(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, 24, n)
		assert.Equal(t, now.Add(-24*time.Hour), store.saved[0].OpenTime)
	})

	t.Run("appends after the latest candle", func(t *testing.T) {
		store := &fakeStore{latest: &models.Price{OpenTime: now.Add(-5 * time.Hour)}}
		n, err := NewPriceRecorder(fetcher, store, []string{"BTCUSDT"}, "1h", 1, zerolog.Nop()).SyncSymbol(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		require.Equal(t, 4, n)
		assert.Equal(t, now.Add(-4*time.Hour), store.saved[0].OpenTime)
	})

	t.Run("up to date", func(t *testing.T) {
		calls := src.calls
		store := &fakeStore{latest: &models.Price{OpenTime: now.Add(-time.Hour)}}
		n, err := NewPriceRecorder(fetcher, store, []string{"BTCUSDT"}, "1h", 1, zerolog.Nop()).SyncSymbol(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, calls, src.calls)
	})
}

func TestRecorder_SyncReportsFailures(t *testing.T) {
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	src := &fakeKlines{step: time.Hour, err: errors.New("unavailable")}

	err := NewPriceRecorder(newFetcher(src, now), &fakeStore{}, []string{"BTCUSDT", "ETHUSDT"}, "1h", 1, zerolog.Nop()).Sync(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestRecorder_SyncPrunesOldCandles(t *testing.T) {
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	latest := now.Add(-2 * time.Hour)

	store := &fakeStore{latest: &models.Price{Symbol: "BTCUSDT", OpenTime: latest}}
	for _, age := range []time.Duration{72, 30, 25, 24, 2} {
		store.saved = append(store.saved, models.Price{Symbol: "BTCUSDT", OpenTime: now.Add(-age * time.Hour)})
	}
	store.saved = append(store.saved, models.Price{Symbol: "ETHUSDT", OpenTime: now.Add(-72 * time.Hour)})

	recorder := NewPriceRecorder(newFetcher(&fakeKlines{step: time.Hour}, now), store, []string{"BTCUSDT"}, "1h", 1, zerolog.Nop())
	require.NoError(t, recorder.Sync(context.Background()))

	for _, p := range store.saved {
		if p.Symbol == "BTCUSDT" {
			assert.False(t, p.OpenTime.Before(now.Add(-24*time.Hour)), "candle at %s kept", p.OpenTime)
		}
	}

	// 24h and 2h old candles survive, plus the one appended after the latest
	count, err := store.CountByTimeFrame("BTCUSDT", "1h")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	other, err := store.CountByTimeFrame("ETHUSDT", "1h")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "other symbols are untouched")
}
