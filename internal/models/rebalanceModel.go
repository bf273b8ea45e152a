package models

import (
	"time"

	"github.com/google/uuid"
)

type Rebalance struct {
	ID       uint      `gorm:"primaryKey"`
	RunID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Step     int       `gorm:"not null"`
	OpenTime time.Time `gorm:"not null"`
	Side     string    `gorm:"not null"`
	Notional float64   `gorm:"not null"`
	Fee      float64   `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

const (
	RebalanceSideBuy  = "buy"
	RebalanceSideSell = "sell"
)
