package repositories

import (
	"CryptoStrategyEval/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceRepository struct {
	db *gorm.DB
}

// NewPriceRepository creates a new instance of PriceRepository
func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// SaveBatch inserts candles, skipping those already stored
func (r *PriceRepository) SaveBatch(prices []models.Price) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "time_frame"}, {Name: "open_time"}},
		DoNothing: true,
	}).CreateInBatches(prices, 500).Error
}

// GetPricesByTimeFrame gets price data for a specific symbol and timeframe
func (r *PriceRepository) GetPricesByTimeFrame(symbol string, timeFrame string, start, end time.Time) ([]models.Price, error) {
	if symbol == "" || timeFrame == "" {
		return nil, errors.New("invalid symbol or timeframe")
	}

	var prices []models.Price
	err := r.db.Where("symbol = ? AND time_frame = ? AND open_time BETWEEN ? AND ?",
		symbol, timeFrame, start, end).
		Order("open_time ASC").
		Find(&prices).Error
	return prices, err
}

// CountByTimeFrame returns the number of stored candles for symbol and timeframe
func (r *PriceRepository) CountByTimeFrame(symbol, timeFrame string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Price{}).
		Where("symbol = ? AND time_frame = ?", symbol, timeFrame).
		Count(&count).Error
	return count, err
}

func (r *PriceRepository) GetLatestPriceByTimeFrame(symbol, timeFrame string) (*models.Price, error) {
	if symbol == "" || timeFrame == "" {
		return nil, errors.New("invalid symbol or timeframe")
	}

	var price models.Price
	err := r.db.Where("symbol = ? AND time_frame = ?", symbol, timeFrame).
		Order("open_time DESC").
		First(&price).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &price, err
}

// DeleteBefore removes candles older than cutoff for a symbol and timeframe
func (r *PriceRepository) DeleteBefore(symbol, timeFrame string, cutoff time.Time) (int64, error) {
	res := r.db.Where("symbol = ? AND time_frame = ? AND open_time < ?", symbol, timeFrame, cutoff).
		Delete(&models.Price{})
	return res.RowsAffected, res.Error
}
