package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coinwatch/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceStore provides access to the append-only BTC price log.
// Currency codes are normalized to uppercase on every operation; a
// currency that has never been observed yields empty results, not an
// error.
type PriceStore struct {
	db *gorm.DB
}

// NewPriceStore creates a new price store
func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

// Append inserts one immutable price observation. There is no
// uniqueness constraint on (currency, timestamp): duplicate fetches in
// the same second both persist.
func (s *PriceStore) Append(currency string, value decimal.Decimal, timestamp time.Time) error {
	point := models.PricePoint{
		Value:     value,
		Currency:  strings.ToUpper(currency),
		Timestamp: timestamp.Truncate(time.Second),
	}
	if err := s.db.Create(&point).Error; err != nil {
		return fmt.Errorf("failed to append price point: %w", err)
	}
	return nil
}

// Latest returns the most recent limit rows for a currency in
// descending recency order.
func (s *PriceStore) Latest(currency string, limit int) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := s.db.
		Where("currency = ?", strings.ToUpper(currency)).
		Order("id DESC").
		Limit(limit).
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest prices: %w", err)
	}
	return points, nil
}

// Window returns all rows for a currency with timestamp >= since, in
// ascending chronological order. Used for trend rendering.
func (s *PriceStore) Window(currency string, since time.Time) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := s.db.
		Where("currency = ? AND timestamp >= ?", strings.ToUpper(currency), since).
		Order("id ASC").
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price window: %w", err)
	}
	return points, nil
}

// LatestOne returns the single most recent value for a currency, or
// ErrNotFound if the currency has never been observed.
func (s *PriceStore) LatestOne(currency string) (decimal.Decimal, error) {
	var point models.PricePoint
	err := s.db.
		Where("currency = ?", strings.ToUpper(currency)).
		Order("id DESC").
		First(&point).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to load latest price: %w", err)
	}
	return point.Value, nil
}

// WriteSnapshot overwrites the JSON snapshot of the latest fetch.
func WriteSnapshot(path string, prices map[string]decimal.Decimal) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data, err := json.MarshalIndent(prices, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
