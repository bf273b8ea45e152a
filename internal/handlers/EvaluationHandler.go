package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CryptoStrategyEval/internal/models"
	"CryptoStrategyEval/internal/operations/backtest"
	"CryptoStrategyEval/internal/services/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// CandleStore loads stored candles
type CandleStore interface {
	GetPricesByTimeFrame(symbol string, timeFrame string, start, end time.Time) ([]models.Price, error)
}

// RunStore persists evaluation runs and reads back earlier ones
type RunStore interface {
	SaveRun(evaluation *models.Evaluation, snapshots []models.PortfolioSnapshot, rebalances []models.Rebalance) error
	FindLatest(symbol, signal string) (*models.Evaluation, error)
	TotalFees(runID uuid.UUID) (float64, error)
}

type EvaluationSettings struct {
	TimeFrame           string
	HistoryDays         int
	CalibrationFraction float64
	Signals             []string
	CompareSignal       string
	Strategy            backtest.Config
}

// SignalResult is the outcome of one signal on one symbol
type SignalResult struct {
	RunID      uuid.UUID
	Evaluation *backtest.Evaluation
}

// SymbolReport collects the results of every signal evaluated on a symbol.
// Comparison is keyed by primary signal name and holds the final value
// advantage over the comparison signal.
type SymbolReport struct {
	Symbol     string
	Results    map[string]SignalResult
	Comparison map[string]float64
	Err        error
}

type EvaluationHandler struct {
	candles    CandleStore
	runs       RunStore
	strategies *strategy.StrategyManager
	engine     *backtest.Engine
	settings   EvaluationSettings
	now        func() time.Time
	log        zerolog.Logger

	mu      sync.RWMutex
	symbols map[string]struct{}
}

func NewEvaluationHandler(
	candles CandleStore,
	runs RunStore,
	strategies *strategy.StrategyManager,
	engine *backtest.Engine,
	settings EvaluationSettings,
	symbols []string,
	log zerolog.Logger,
) *EvaluationHandler {
	handler := &EvaluationHandler{
		candles:    candles,
		runs:       runs,
		strategies: strategies,
		engine:     engine,
		settings:   settings,
		now:        time.Now,
		log:        log.With().Str("component", "evaluation_handler").Logger(),
		symbols:    make(map[string]struct{}),
	}

	for _, symbol := range symbols {
		handler.symbols[symbol] = struct{}{}
	}

	return handler
}

// RunAll evaluates every configured signal on every symbol concurrently.
// Reports are returned in symbol order.
func (h *EvaluationHandler) RunAll(ctx context.Context) []SymbolReport {
	h.mu.RLock()
	symbols := lo.Keys(h.symbols)
	h.mu.RUnlock()

	reports := make([]SymbolReport, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			reports[i] = h.EvaluateSymbol(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	sortReports(reports)
	return reports
}

// EvaluateSymbol runs the calibrate-then-validate pipeline of every signal
// on the stored candles of symbol, persists the runs and logs a summary.
func (h *EvaluationHandler) EvaluateSymbol(ctx context.Context, symbol string) SymbolReport {
	report := SymbolReport{
		Symbol:     symbol,
		Results:    make(map[string]SignalResult),
		Comparison: make(map[string]float64),
	}
	logger := h.log.With().Str("symbol", symbol).Logger()

	signals, err := h.buildSignals(ctx, symbol)
	if err != nil {
		report.Err = err
		logger.Error().Err(err).Msg("Could not prepare signals")
		return report
	}

	primaries := lo.Filter(lo.Uniq(h.settings.Signals), func(name string, _ int) bool {
		return name != h.settings.CompareSignal
	})

	// The comparison signal is calibrated once and shared by every primary
	var baseline *backtest.Evaluation
	if compare, ok := signals[h.settings.CompareSignal]; ok {
		baseline, err = h.engine.Evaluate(compare, h.priorConfig(symbol, compare.Name, logger))
		if err != nil {
			report.Err = err
			logger.Error().Err(err).Str("signal", compare.Name).Msg("Signal evaluation failed")
		} else {
			h.record(symbol, baseline, &report, logger)
		}
	}

	for _, name := range primaries {
		if err := ctx.Err(); err != nil {
			report.Err = err
			return report
		}

		cfg := h.priorConfig(symbol, name, logger)

		if baseline == nil {
			evaluation, err := h.engine.Evaluate(signals[name], cfg)
			if err != nil {
				report.Err = err
				logger.Error().Err(err).Str("signal", name).Msg("Signal evaluation failed")
				continue
			}
			h.record(symbol, evaluation, &report, logger)
			continue
		}

		comparison, err := h.engine.CompareWith(signals[name], baseline, cfg)
		if err != nil {
			report.Err = err
			logger.Error().Err(err).Str("signal", name).Msg("Signal comparison failed")
			continue
		}
		h.record(symbol, comparison.Primary, &report, logger)

		if advantage, ok := comparison.Advantage(); ok {
			report.Comparison[name] = advantage

			logger.Info().
				Str("signal", name).
				Str("compared_to", baseline.Signal).
				Float64("final_value", comparison.Primary.Metrics.FinalValue).
				Float64("compare_final_value", baseline.Metrics.FinalValue).
				Float64("advantage", advantage).
				Msg("Signal comparison")
		}
	}

	return report
}

// priorConfig returns the strategy config seeded with the thresholds of the
// latest stored run of signal on symbol. The engine falls back to them when
// calibration finds no trading pair.
func (h *EvaluationHandler) priorConfig(symbol, signal string, logger zerolog.Logger) backtest.Config {
	cfg := h.settings.Strategy

	latest, err := h.runs.FindLatest(symbol, signal)
	if err != nil {
		logger.Warn().Err(err).Str("signal", signal).Msg("Could not load previous evaluation")
		return cfg
	}
	if latest == nil {
		return cfg
	}

	prior := backtest.Thresholds{Low: latest.LowThreshold, Up: latest.UpThreshold}
	if prior.Validate() != nil {
		return cfg
	}
	return cfg.WithThresholds(prior)
}

// buildSignals scores the stored candles with every configured signal and
// splits them into calibration and validation windows. All signals share
// the same warmup trim so their windows cover the same candles.
func (h *EvaluationHandler) buildSignals(ctx context.Context, symbol string) (map[string]backtest.Signal, error) {
	names := lo.Uniq(append(append([]string(nil), h.settings.Signals...), h.settings.CompareSignal))
	names = lo.Filter(names, func(name string, _ int) bool { return name != "" })

	lookback, err := h.strategies.MaxLookback(names...)
	if err != nil {
		return nil, err
	}

	end := h.now()
	start := end.AddDate(0, 0, -h.settings.HistoryDays)
	prices, err := h.candles.GetPricesByTimeFrame(symbol, h.settings.TimeFrame, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading %s candles: %w", symbol, err)
	}

	closes := lo.Map(prices, func(p models.Price, _ int) float64 { return p.Close })
	dataset, err := backtest.NewDataset(
		lo.Map(prices, func(p models.Price, _ int) time.Time { return p.OpenTime }),
		closes,
	)
	if err != nil {
		return nil, fmt.Errorf("building %s dataset from %d candles: %w", symbol, len(prices), err)
	}

	signals := make(map[string]backtest.Signal, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source, err := h.strategies.Get(name)
		if err != nil {
			return nil, err
		}

		// Sources score every candle; the last one only closes the final
		// ratio, so its score is dropped to keep score i on candle i.
		scores, err := source.Score(symbol, closes)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", name, err)
		}
		if len(scores) != len(closes) {
			return nil, fmt.Errorf("scoring %s: %w: %d scores for %d candles", name, backtest.ErrLengthMismatch, len(scores), len(closes))
		}

		scored, err := dataset.WithScores(scores[:dataset.Len()])
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", name, err)
		}
		scored, err = scored.Trim(lookback)
		if err != nil {
			return nil, fmt.Errorf("trimming %s warmup: %w", name, err)
		}

		calibration, validation, err := scored.Split(h.settings.CalibrationFraction)
		if err != nil {
			return nil, fmt.Errorf("splitting %s: %w", name, err)
		}

		signals[name] = backtest.Signal{Name: name, Calibration: calibration, Validation: validation}
	}

	return signals, nil
}

func (h *EvaluationHandler) record(symbol string, evaluation *backtest.Evaluation, report *SymbolReport, logger zerolog.Logger) {
	runID := uuid.New()
	report.Results[evaluation.Signal] = SignalResult{RunID: runID, Evaluation: evaluation}

	run, snapshots, rebalances := buildRun(runID, symbol, h.settings.TimeFrame, evaluation)
	if err := h.runs.SaveRun(run, snapshots, rebalances); err != nil {
		report.Err = errors.Join(report.Err, err)
		logger.Error().Err(err).Str("signal", evaluation.Signal).Msg("Failed to save evaluation")
		return
	}

	fees, err := h.runs.TotalFees(runID)
	if err != nil {
		logger.Warn().Err(err).Str("run_id", runID.String()).Msg("Could not sum run fees")
	}

	event := logger.Info().
		Str("signal", evaluation.Signal).
		Str("run_id", runID.String()).
		Bool("calibrated", evaluation.Calibration.Found).
		Float64("low_threshold", evaluation.Config.LowThreshold).
		Float64("up_threshold", evaluation.Config.UpThreshold)

	if evaluation.Validation == nil {
		event.Msg("Evaluation saved without validation")
		return
	}

	event.
		Int("trades", evaluation.Validation.Trades).
		Float64("fees", fees).
		Float64("final_value", evaluation.Metrics.FinalValue).
		Float64("profit_vs_hold", evaluation.Metrics.ProfitFactor).
		Float64("max_drawdown", evaluation.Metrics.MaxDrawdown).
		Float64("sharpe", evaluation.Metrics.SharpeRatio).
		Msg("Evaluation saved")
}

// AddSymbol starts evaluating symbol on the next run
func (h *EvaluationHandler) AddSymbol(symbol string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.symbols[symbol] = struct{}{}
}

func (h *EvaluationHandler) RemoveSymbol(symbol string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.symbols, symbol)
}
