package price

import (
	"context"
	"fmt"
	"time"

	"CryptoStrategyEval/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
)

// Binance returns at most this many candles per request
const chunkCandles = 1000

// KlineSource is the part of the exchange client used for candles
type KlineSource interface {
	GetKlines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]*futures.Kline, error)
}

type PriceFetcher struct {
	client KlineSource
	now    func() time.Time
	log    zerolog.Logger
}

func NewPriceFetcher(client KlineSource, log zerolog.Logger) *PriceFetcher {
	return &PriceFetcher{
		client: client,
		now:    time.Now,
		log:    log.With().Str("component", "price_fetcher").Logger(),
	}
}

// FetchRange downloads the closed candles of symbol opening in [start, end)
// in chunks, returning them in open time order without duplicates.
func (f *PriceFetcher) FetchRange(ctx context.Context, symbol, timeFrame string, start, end time.Time) ([]models.Price, error) {
	interval, err := Interval(timeFrame)
	if err != nil {
		return nil, err
	}

	now := f.now()
	if end.After(now) {
		end = now
	}

	chunk := interval * chunkCandles
	var prices []models.Price
	var lastOpen time.Time

	for currentStart := start; currentStart.Before(end); currentStart = currentStart.Add(chunk) {
		currentEnd := currentStart.Add(chunk)
		if currentEnd.After(end) {
			currentEnd = end
		}

		// EndTime is inclusive on Binance
		klines, err := f.client.GetKlines(ctx, symbol, timeFrame, currentStart.UnixMilli(), currentEnd.UnixMilli()-1)
		if err != nil {
			return nil, fmt.Errorf("fetching %s %s from %s: %w", symbol, timeFrame, currentStart.Format(time.RFC3339), err)
		}

		for _, k := range klines {
			p, err := KlineToPrice(symbol, timeFrame, k)
			if err != nil {
				return nil, err
			}
			// Still open candle
			if p.CloseTime.After(now) {
				continue
			}
			if !lastOpen.IsZero() && !p.OpenTime.After(lastOpen) {
				continue
			}
			lastOpen = p.OpenTime
			prices = append(prices, p)
		}

		f.log.Debug().
			Str("symbol", symbol).
			Str("timeframe", timeFrame).
			Int("candles", len(klines)).
			Time("from", currentStart).
			Time("to", currentEnd).
			Msg("Fetched candles")
	}

	return prices, nil
}

// FetchPrices downloads the last days of closed candles
func (f *PriceFetcher) FetchPrices(ctx context.Context, symbol, timeFrame string, days int) ([]models.Price, error) {
	end := f.now()
	return f.FetchRange(ctx, symbol, timeFrame, end.AddDate(0, 0, -days), end)
}
