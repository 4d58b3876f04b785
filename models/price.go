package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimestampLayout is the storage and display format for observation times.
const TimestampLayout = "2006-01-02 15:04:05"

// PricePoint represents one observed BTC price in a given currency.
// Rows are append-only: insertion order equals ID order equals
// chronological order, and no row is ever updated or deleted.
type PricePoint struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Value     decimal.Decimal `gorm:"type:decimal(20,8)" json:"value"`
	Currency  string          `gorm:"index;not null" json:"currency"` // uppercase code
	Timestamp time.Time       `json:"timestamp"`
}

// FormattedTimestamp returns the observation time in display form.
func (p PricePoint) FormattedTimestamp() string {
	return p.Timestamp.Format(TimestampLayout)
}

// MigratePriceModels runs database migrations for price-related models
func MigratePriceModels(db *gorm.DB) error {
	return db.AutoMigrate(&PricePoint{})
}
