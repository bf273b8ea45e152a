package models

import (
	"time"

	"github.com/google/uuid"
)

// PortfolioSnapshot is the portfolio state at one validation step
type PortfolioSnapshot struct {
	ID       uint      `gorm:"primaryKey"`
	RunID    uuid.UUID `gorm:"type:uuid;index:idx_snapshot_run_step;not null"`
	Step     int       `gorm:"index:idx_snapshot_run_step;not null"`
	OpenTime time.Time `gorm:"not null"`

	Cash   float64 `gorm:"not null"`
	Crypto float64 `gorm:"not null"`
	Total  float64 `gorm:"not null"`
	Score  float64
	Close  float64 `gorm:"type:decimal(20,8)"`
}
