package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var validTimeFrames = map[string]bool{"5m": true, "15m": true, "1h": true, "4h": true, "1d": true}

// Load reads .env if present and then the environment.
// The returned bool reports whether a .env file was found.
func Load() (*config, bool, error) {
	found := godotenv.Load() == nil

	var parseErrs []error
	envFloat := func(key string, def float64) float64 {
		f, err := envFloatOr(key, def)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return f
	}

	cfg := &config{
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     EnvtoInt(os.Getenv("DB_PORT")),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Evaluation: EvaluationConfig{
			TimeFrame:           envOr("TIMEFRAME", "1h"),
			HistoryDays:         envIntOr("HISTORY_DAYS", 90),
			TransactionFee:      envFloat("TRANSACTION_FEE", 0.001),
			BidAskSpread:        envFloat("BID_ASK_SPREAD", 0.0005),
			CalibrationFraction: envFloat("CALIBRATION_FRACTION", 0.7),
			Signals:             splitList(envOr("SIGNALS", "momentum,macd")),
			CompareSignal:       envOr("COMPARE_SIGNAL", "momentum"),
			ScoreFile:           os.Getenv("SCORE_FILE"),
			SearchMode:          envOr("THRESHOLD_SEARCH_MODE", "grid"),
			Schedule:            os.Getenv("EVAL_SCHEDULE"),
			SkipSync:            envBool("SKIP_SYNC"),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Pretty: envBool("LOG_PRETTY"),
		},
		Symbols: getSymbols(),
	}

	if err := errors.Join(parseErrs...); err != nil {
		return nil, found, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, found, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, found, nil
}

func (c *config) Validate() error {
	e := c.Evaluation

	if len(c.Symbols) == 0 {
		return errors.New("no trading symbols configured")
	}
	if !validTimeFrames[e.TimeFrame] {
		return fmt.Errorf("unsupported timeframe %q", e.TimeFrame)
	}
	if e.HistoryDays <= 0 {
		return fmt.Errorf("HISTORY_DAYS must be positive, got %d", e.HistoryDays)
	}
	if e.TransactionFee < 0 || e.BidAskSpread < 0 {
		return fmt.Errorf("fees must be non-negative: fee=%v spread=%v", e.TransactionFee, e.BidAskSpread)
	}
	if e.TransactionFee+e.BidAskSpread >= 1 {
		return fmt.Errorf("fee plus spread must be below 1, got %v", e.TransactionFee+e.BidAskSpread)
	}
	if e.CalibrationFraction <= 0 || e.CalibrationFraction >= 1 {
		return fmt.Errorf("CALIBRATION_FRACTION must be in (0, 1), got %v", e.CalibrationFraction)
	}
	if e.SearchMode != "grid" && e.SearchMode != "fixed" {
		return fmt.Errorf("unknown threshold search mode %q", e.SearchMode)
	}
	if len(e.Signals) == 0 {
		return errors.New("no signals configured")
	}
	return nil
}

// helper env(string) to int
func EnvtoInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return EnvtoInt(v)
}

// envFloatOr returns def for an unset key and an error for a malformed value
func envFloatOr(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s=%q is not a number", key, v)
	}
	return f, nil
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// helper to get symbols
func getSymbols() []string {
	symbols := os.Getenv("TRADING_SYMBOLS")
	if symbols == "" {
		return []string{"BTCUSDT", "ETHUSDT"} // Default pairs if none specified
	}
	return splitList(strings.ToUpper(symbols))
}
