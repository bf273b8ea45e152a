package scheduler

import (
	"context"
	"errors"
	"fmt"

	"CryptoStrategyEval/internal/handlers"
)

// PriceRefresher brings stored candles up to date
type PriceRefresher interface {
	Refresh(ctx context.Context) error
}

// Evaluator runs the evaluation of every configured symbol
type Evaluator interface {
	RunAll(ctx context.Context) []handlers.SymbolReport
}

// EvaluationJob refreshes prices and then re-evaluates every symbol
type EvaluationJob struct {
	ctx       context.Context
	prices    PriceRefresher // nil skips the refresh
	evaluator Evaluator
}

func NewEvaluationJob(ctx context.Context, prices PriceRefresher, evaluator Evaluator) *EvaluationJob {
	return &EvaluationJob{ctx: ctx, prices: prices, evaluator: evaluator}
}

func (j *EvaluationJob) Name() string {
	return "strategy_evaluation"
}

// Run returns an error when the refresh fails or any symbol failed; the
// evaluation still runs on the stored candles after a failed refresh.
func (j *EvaluationJob) Run() error {
	if err := j.ctx.Err(); err != nil {
		return err
	}

	var errs []error
	if j.prices != nil {
		if err := j.prices.Refresh(j.ctx); err != nil {
			errs = append(errs, fmt.Errorf("price refresh: %w", err))
		}
	}

	for _, report := range j.evaluator.RunAll(j.ctx) {
		if report.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", report.Symbol, report.Err))
		}
	}

	return errors.Join(errs...)
}
