package models

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is one calibrate-then-validate run of a signal on a symbol
type Evaluation struct {
	ID        uint      `gorm:"primaryKey"`
	RunID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Symbol    string    `gorm:"index;not null"`
	TimeFrame string    `gorm:"not null"`
	Signal    string    `gorm:"index;not null"`
	Status    string    `gorm:"not null"`

	TransactionFee float64 `gorm:"type:decimal(20,8)"`
	BidAskSpread   float64 `gorm:"type:decimal(20,8)"`
	LowThreshold   float64
	UpThreshold    float64

	// Calibration window outcome
	Calibrated           bool
	CalibrationScore     float64
	CalibrationTrades    int
	CandidatesEvaluated  int
	CalibrationStartTime time.Time
	ValidationStartTime  time.Time `gorm:"index"`
	ValidationEndTime    time.Time

	// Validation window outcome
	Trades       int
	FinalValue   float64
	ProfitScore  float64
	ProfitFactor float64
	Drawdown     float64
	MaxDrawdown  float64
	SharpeRatio  float64

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

const (
	EvaluationStatusValidated    = "validated"
	EvaluationStatusUncalibrated = "uncalibrated"
)
