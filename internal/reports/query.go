// Package reports serves read-only range queries over requisitions and meal
// preparation logs. It never mutates stock and always reads committed state.
package reports

import (
	"fmt"
	"time"

	"kitchreq-backend/internal/apperr"
	"kitchreq-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Query struct {
	db *gorm.DB
}

func NewQuery(db *gorm.DB) *Query {
	return &Query{db: db}
}

// RequisitionsInRange returns lots created inside [from, to], oldest first.
func (q *Query) RequisitionsInRange(from, to time.Time) ([]models.StockLot, error) {
	var lots []models.StockLot
	err := q.db.
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, storageErr("list requisitions", err)
	}
	return lots, nil
}

// ConsumptionInRange returns consumption records prepared inside [from, to],
// oldest first.
func (q *Query) ConsumptionInRange(from, to time.Time) ([]models.ConsumptionRecord, error) {
	var records []models.ConsumptionRecord
	err := q.db.
		Where("prepared_at >= ? AND prepared_at <= ?", from, to).
		Order("prepared_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, storageErr("list consumption", err)
	}
	return records, nil
}

// ItemStock is the remaining balance of one (item, unit) pair summed over all
// of its lots.
type ItemStock struct {
	Item      string          `json:"item"`
	Unit      string          `json:"unit"`
	Total     decimal.Decimal `json:"total_quantity"`
	Remaining decimal.Decimal `json:"remaining_quantity"`
	Lots      int             `json:"lots"`
}

// CurrentStock summarizes what the kitchen can still draw on, per item/unit.
func (q *Query) CurrentStock() ([]ItemStock, error) {
	var stocks []ItemStock
	err := q.db.
		Model(&models.StockLot{}).
		Select("item, unit, SUM(total_quantity) AS total, SUM(remaining_quantity) AS remaining, COUNT(*) AS lots").
		Group("item, unit").
		Order("item ASC, unit ASC").
		Scan(&stocks).Error
	if err != nil {
		return nil, storageErr("summarize stock", err)
	}
	return stocks, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorageUnavailable, op, err)
}
