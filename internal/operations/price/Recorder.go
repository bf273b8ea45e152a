package price

import (
	"context"
	"fmt"
	"time"

	"CryptoStrategyEval/internal/models"

	"github.com/rs/zerolog"
)

// PriceStore is the candle persistence used by the recorder
type PriceStore interface {
	SaveBatch(prices []models.Price) error
	GetLatestPriceByTimeFrame(symbol, timeFrame string) (*models.Price, error)
	DeleteBefore(symbol, timeFrame string, cutoff time.Time) (int64, error)
	CountByTimeFrame(symbol, timeFrame string) (int64, error)
}

// PriceRecorder keeps the stored candle history of a set of symbols current
type PriceRecorder struct {
	fetcher     *PriceFetcher
	store       PriceStore
	symbols     []string
	timeFrame   string
	historyDays int
	log         zerolog.Logger
}

func NewPriceRecorder(fetcher *PriceFetcher, store PriceStore, symbols []string, timeFrame string, historyDays int, log zerolog.Logger) *PriceRecorder {
	return &PriceRecorder{
		fetcher:     fetcher,
		store:       store,
		symbols:     symbols,
		timeFrame:   timeFrame,
		historyDays: historyDays,
		log:         log.With().Str("component", "price_recorder").Logger(),
	}
}

// Sync appends the candles missing since the latest stored one for every
// symbol and drops those older than historyDays. An empty store is
// backfilled with historyDays of candles.
// Symbols that fail are logged and skipped; the last error is returned.
func (r *PriceRecorder) Sync(ctx context.Context) error {
	var lastErr error
	for _, symbol := range r.symbols {
		n, err := r.SyncSymbol(ctx, symbol)
		if err != nil {
			r.log.Error().Err(err).Str("symbol", symbol).Msg("Price sync failed")
			lastErr = err
			continue
		}

		pruned, err := r.Prune(symbol)
		if err != nil {
			r.log.Error().Err(err).Str("symbol", symbol).Msg("Price pruning failed")
			lastErr = err
			continue
		}

		stored, err := r.store.CountByTimeFrame(symbol, r.timeFrame)
		if err != nil {
			r.log.Warn().Err(err).Str("symbol", symbol).Msg("Could not count stored candles")
		}

		r.log.Info().
			Str("symbol", symbol).
			Str("timeframe", r.timeFrame).
			Int("new_candles", n).
			Int64("pruned", pruned).
			Int64("stored", stored).
			Msg("Prices synced")
	}
	return lastErr
}

// Prune deletes the candles of symbol that fall before the history window
func (r *PriceRecorder) Prune(symbol string) (int64, error) {
	interval, err := Interval(r.timeFrame)
	if err != nil {
		return 0, err
	}

	cutoff := r.fetcher.now().AddDate(0, 0, -r.historyDays).Truncate(interval)
	n, err := r.store.DeleteBefore(symbol, r.timeFrame, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning %s candles before %s: %w", symbol, cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}

func (r *PriceRecorder) SyncSymbol(ctx context.Context, symbol string) (int, error) {
	interval, err := Interval(r.timeFrame)
	if err != nil {
		return 0, err
	}

	latest, err := r.store.GetLatestPriceByTimeFrame(symbol, r.timeFrame)
	if err != nil {
		return 0, fmt.Errorf("loading latest %s candle: %w", symbol, err)
	}

	end := r.fetcher.now()
	start := end.AddDate(0, 0, -r.historyDays).Truncate(interval)
	if latest != nil {
		start = latest.OpenTime.Add(interval)
	}
	if !start.Before(end) {
		return 0, nil
	}

	prices, err := r.fetcher.FetchRange(ctx, symbol, r.timeFrame, start, end)
	if err != nil {
		return 0, err
	}

	if err := r.store.SaveBatch(prices); err != nil {
		return 0, fmt.Errorf("saving %d %s candles: %w", len(prices), symbol, err)
	}
	return len(prices), nil
}

// StartRecording syncs every candle interval until ctx is done
func (r *PriceRecorder) StartRecording(ctx context.Context) error {
	interval, err := Interval(r.timeFrame)
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.log.Info().Str("timeframe", r.timeFrame).Msg("Starting price recording")

		for {
			select {
			case <-ctx.Done():
				r.log.Info().Str("timeframe", r.timeFrame).Msg("Stopping price recording")
				return
			case <-ticker.C:
				_ = r.Sync(ctx)
			}
		}
	}()
	return nil
}
