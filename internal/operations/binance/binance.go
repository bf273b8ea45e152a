package binance

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Binance caps a klines response at this many candles
const MaxKlinesPerRequest = 1500

type BinanceClient struct {
	client      *futures.Client
	rateLimiter *rate.Limiter
	httpClient  *http.Client
	maxRetries  int
	backoff     time.Duration
	log         zerolog.Logger
}

func NewBinanceClient(apiKey, secretKey string, log zerolog.Logger) *BinanceClient {
	// Create custom HTTP client with timeouts
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Klines are public, the keys are only sent when present
	futuresClient := futures.NewClient(apiKey, secretKey)
	futuresClient.HTTPClient = httpClient

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceClient{
		client:      futuresClient,
		rateLimiter: limiter,
		httpClient:  httpClient,
		maxRetries:  3,
		backoff:     100 * time.Millisecond,
		log:         log.With().Str("component", "binance").Logger(),
	}
}

// GetKlines fetches candles opening in [startTime, endTime] (milliseconds),
// retrying with exponential backoff.
func (c *BinanceClient) GetKlines(ctx context.Context, symbol, interval string, startTime, endTime int64) ([]*futures.Kline, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		klines, err := c.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startTime).
			EndTime(endTime).
			Limit(MaxKlinesPerRequest).
			Do(ctx)
		if err == nil {
			return klines, nil
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * c.backoff
		c.log.Warn().
			Err(err).
			Str("symbol", symbol).
			Str("interval", interval).
			Int("attempt", attempt+1).
			Dur("retry_in", waitTime).
			Msg("Klines request failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return nil, fmt.Errorf("fetching %s %s klines after %d attempts: %w", symbol, interval, c.maxRetries+1, lastErr)
}
