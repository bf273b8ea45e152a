package price

import (
	"fmt"
	"time"

	"CryptoStrategyEval/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

var intervals = map[string]time.Duration{
	models.PriceTimeFrame5m:  5 * time.Minute,
	models.PriceTimeFrame15m: 15 * time.Minute,
	models.PriceTimeFrame1h:  time.Hour,
	models.PriceTimeFrame4h:  4 * time.Hour,
	models.PriceTimeFrame1d:  24 * time.Hour,
}

// Interval returns the candle duration of a timeframe
func Interval(timeFrame string) (time.Duration, error) {
	d, ok := intervals[timeFrame]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe %q", timeFrame)
	}
	return d, nil
}

// KlineToPrice converts a Binance kline into a stored candle.
// Decimal strings are parsed exactly before the float conversion.
func KlineToPrice(symbol, timeFrame string, k *futures.Kline) (models.Price, error) {
	if k == nil {
		return models.Price{}, fmt.Errorf("nil kline for %s", symbol)
	}

	price := models.Price{
		Symbol:     symbol,
		TimeFrame:  timeFrame,
		OpenTime:   time.UnixMilli(k.OpenTime).UTC(),
		CloseTime:  time.UnixMilli(k.CloseTime).UTC(),
		TradeCount: k.TradeNum,
	}

	var err error
	if price.Open, err = parseDecimal("open", k.Open); err != nil {
		return models.Price{}, err
	}
	if price.High, err = parseDecimal("high", k.High); err != nil {
		return models.Price{}, err
	}
	if price.Low, err = parseDecimal("low", k.Low); err != nil {
		return models.Price{}, err
	}
	if price.Close, err = parseDecimal("close", k.Close); err != nil {
		return models.Price{}, err
	}
	if price.Volume, err = parseDecimal("volume", k.Volume); err != nil {
		return models.Price{}, err
	}

	if price.Close <= 0 {
		return models.Price{}, fmt.Errorf("non-positive close %s for %s at %s", k.Close, symbol, price.OpenTime.Format(time.RFC3339))
	}

	return price, nil
}

func parseDecimal(field, s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d.InexactFloat64(), nil
}
