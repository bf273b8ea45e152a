package handlers

import (
	"sort"
	"time"

	"CryptoStrategyEval/internal/models"
	"CryptoStrategyEval/internal/operations/backtest"

	"github.com/google/uuid"
)

// buildRun converts an evaluation into its database records
func buildRun(runID uuid.UUID, symbol, timeFrame string, e *backtest.Evaluation) (*models.Evaluation, []models.PortfolioSnapshot, []models.Rebalance) {
	run := &models.Evaluation{
		RunID:               runID,
		Symbol:              symbol,
		TimeFrame:           timeFrame,
		Signal:              e.Signal,
		Status:              models.EvaluationStatusUncalibrated,
		TransactionFee:      e.Config.TransactionFee,
		BidAskSpread:        e.Config.BidAskSpread,
		LowThreshold:        e.Config.LowThreshold,
		UpThreshold:         e.Config.UpThreshold,
		Calibrated:          e.Calibration.Found,
		CalibrationScore:    e.Calibration.ProfitScore,
		CalibrationTrades:   e.Calibration.Trades,
		CandidatesEvaluated: e.Calibration.Evaluated,
	}

	if e.Validation == nil {
		return run, nil, nil
	}

	run.Status = models.EvaluationStatusValidated
	run.Trades = e.Validation.Trades
	run.FinalValue = e.Metrics.FinalValue
	run.ProfitScore = e.Metrics.ProfitScore
	run.ProfitFactor = e.Metrics.ProfitFactor
	run.Drawdown = e.Metrics.Drawdown
	run.MaxDrawdown = e.Metrics.MaxDrawdown
	run.SharpeRatio = e.Metrics.SharpeRatio

	times := e.ValidationTimes
	if len(times) > 0 {
		run.ValidationStartTime = times[0]
		run.ValidationEndTime = times[len(times)-1]
	}
	run.CalibrationStartTime = e.CalibrationStart

	path := e.Validation
	snapshots := make([]models.PortfolioSnapshot, path.Len())
	for i := range snapshots {
		snapshots[i] = models.PortfolioSnapshot{
			RunID:    runID,
			Step:     i,
			OpenTime: timeAt(times, i),
			Cash:     path.Cash[i],
			Crypto:   path.Crypto[i],
			Total:    path.Value[i],
			Score:    path.Score[i],
			Close:    valueAt(e.ValidationPrices, i),
		}
	}

	rebalances := make([]models.Rebalance, len(path.Rebalances))
	for i, r := range path.Rebalances {
		rebalances[i] = models.Rebalance{
			RunID:    runID,
			Step:     r.Step,
			OpenTime: timeAt(times, r.Step),
			Side:     r.Side,
			Notional: r.Notional,
			Fee:      r.Fee,
		}
	}

	return run, snapshots, rebalances
}

func timeAt(times []time.Time, i int) time.Time {
	if i < len(times) {
		return times[i]
	}
	return time.Time{}
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func sortReports(reports []SymbolReport) {
	sort.Slice(reports, func(i, j int) bool { return reports[i].Symbol < reports[j].Symbol })
}
