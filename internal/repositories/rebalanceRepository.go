package repositories

import (
	"CryptoStrategyEval/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RebalanceRepository struct {
	db *gorm.DB
}

// NewRebalanceRepository creates a new instance of RebalanceRepository
func NewRebalanceRepository(db *gorm.DB) *RebalanceRepository {
	return &RebalanceRepository{db: db}
}

func (r *RebalanceRepository) CreateBatch(rebalances []models.Rebalance) error {
	if len(rebalances) == 0 {
		return nil
	}
	return r.db.CreateInBatches(rebalances, 1000).Error
}

// GetTotalFees sums the fees paid by a run
func (r *RebalanceRepository) GetTotalFees(runID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.Model(&models.Rebalance{}).
		Where("run_id = ?", runID).
		Select("COALESCE(SUM(fee), 0)").
		Scan(&total).Error
	return total, err
}
