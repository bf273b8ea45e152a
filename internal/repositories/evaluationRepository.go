package repositories

import (
	"CryptoStrategyEval/internal/models"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository creates a new instance of EvaluationRepository
func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// SaveRun stores an evaluation together with its snapshots and rebalances
// in a single transaction.
func (r *EvaluationRepository) SaveRun(evaluation *models.Evaluation, snapshots []models.PortfolioSnapshot, rebalances []models.Rebalance) error {
	if evaluation == nil {
		return errors.New("evaluation cannot be nil")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evaluation).Error; err != nil {
			return fmt.Errorf("creating evaluation: %w", err)
		}
		if err := NewSnapshotRepository(tx).CreateBatch(snapshots); err != nil {
			return fmt.Errorf("creating snapshots: %w", err)
		}
		if err := NewRebalanceRepository(tx).CreateBatch(rebalances); err != nil {
			return fmt.Errorf("creating rebalances: %w", err)
		}
		return nil
	})
}

// FindLatest retrieves the most recent evaluation of a signal on a symbol
func (r *EvaluationRepository) FindLatest(symbol, signal string) (*models.Evaluation, error) {
	if symbol == "" || signal == "" {
		return nil, errors.New("invalid symbol or signal")
	}
	var evaluation models.Evaluation
	err := r.db.Where("symbol = ? AND signal = ?", symbol, signal).
		Order("created_at DESC").
		First(&evaluation).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &evaluation, err
}

// TotalFees sums the fees paid by the rebalances of a run
func (r *EvaluationRepository) TotalFees(runID uuid.UUID) (float64, error) {
	return NewRebalanceRepository(r.db).GetTotalFees(runID)
}
