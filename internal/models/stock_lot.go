package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot: a single requisitioned batch of an item. Lots sharing the same
// item/unit are never merged; each keeps its own remaining balance.
type StockLot struct {
	ID                uint            `gorm:"primaryKey"`
	Item              string          `gorm:"size:100;not null;index:idx_stock_lots_item_unit,priority:1"`
	Unit              string          `gorm:"size:20;not null;index:idx_stock_lots_item_unit,priority:2"`
	TotalQuantity     decimal.Decimal `gorm:"type:decimal(20,4);not null"` // quantity at requisition time
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null"` // never negative, never above total
	CreatedAt         time.Time       `gorm:"index;not null"`
	UpdatedAt         time.Time
}
