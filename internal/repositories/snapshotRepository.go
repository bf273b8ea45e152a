package repositories

import (
	"CryptoStrategyEval/internal/models"

	"gorm.io/gorm"
)

type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new instance of SnapshotRepository
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) CreateBatch(snapshots []models.PortfolioSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.CreateInBatches(snapshots, 1000).Error
}
