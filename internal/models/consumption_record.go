package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionRecord: one line of a prepared meal. Append-only; a record
// references the (item, unit) pair it drew against, not a specific lot,
// because a single deduction may span several lots.
type ConsumptionRecord struct {
	ID                 uint            `gorm:"primaryKey"`
	MealName           string          `gorm:"size:100;not null;index"`
	Item               string          `gorm:"size:100;not null"`
	Unit               string          `gorm:"size:20;not null"`
	QuantityPerPortion decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Portions           int             `gorm:"not null"`
	TotalQuantityUsed  decimal.Decimal `gorm:"type:decimal(20,4);not null"` // QuantityPerPortion * Portions
	PreparedAt         time.Time       `gorm:"index;not null"`
	CreatedAt          time.Time
}
