// Package ledger is the source of truth for stock lots and their remaining
// quantities. All quantity mutations from meal preparation go through the
// kitchen package; this package owns requisition and correction writes.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kitchreq-backend/internal/apperr"
	"kitchreq-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateLot records a new requisition. A fresh lot is created even when lots
// for the same item/unit already exist; lots are never merged.
func (s *Store) CreateLot(item string, quantity decimal.Decimal, unit string) (*models.StockLot, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, fmt.Errorf("%w: item name is required", apperr.ErrInvalidInput)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", apperr.ErrInvalidInput, quantity)
	}
	if !models.ValidUnit(unit) {
		return nil, fmt.Errorf("%w: unknown unit %q", apperr.ErrInvalidInput, unit)
	}

	lot := models.StockLot{
		Item:              item,
		Unit:              unit,
		TotalQuantity:     quantity,
		RemainingQuantity: quantity,
	}
	if err := s.db.Create(&lot).Error; err != nil {
		return nil, storageErr("create lot", err)
	}
	return &lot, nil
}

// UpdateLot is a destructive correction: it replaces item, unit and quantity
// and resets the remaining balance to the new quantity, discarding any
// consumption already drawn against the lot ("restock to N").
func (s *Store) UpdateLot(id uint, item string, quantity decimal.Decimal, unit string) (*models.StockLot, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, fmt.Errorf("%w: item name is required", apperr.ErrInvalidInput)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive, got %s", apperr.ErrInvalidInput, quantity)
	}
	if !models.ValidUnit(unit) {
		return nil, fmt.Errorf("%w: unknown unit %q", apperr.ErrInvalidInput, unit)
	}

	var lot models.StockLot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, "id = ?", id).Error; err != nil {
			return err
		}
		lot.Item = item
		lot.Unit = unit
		lot.TotalQuantity = quantity
		lot.RemainingQuantity = quantity
		return tx.Save(&lot).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lot %d", apperr.ErrNotFound, id)
		}
		return nil, storageErr("update lot", err)
	}
	return &lot, nil
}

// GetLot returns a single lot by id.
func (s *Store) GetLot(id uint) (*models.StockLot, error) {
	var lot models.StockLot
	if err := s.db.First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lot %d", apperr.ErrNotFound, id)
		}
		return nil, storageErr("get lot", err)
	}
	return &lot, nil
}

// FindMatchingLots returns every lot for the item/unit pair, oldest first.
// The ordering is what makes FIFO draws deterministic; id breaks ties
// between lots created in the same instant.
func (s *Store) FindMatchingLots(item, unit string) ([]models.StockLot, error) {
	var lots []models.StockLot
	err := s.db.
		Where("item = ? AND unit = ?", strings.TrimSpace(item), unit).
		Order("created_at ASC, id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, storageErr("find matching lots", err)
	}
	return lots, nil
}

// ListLots returns lots created inside [from, to], oldest first.
func (s *Store) ListLots(from, to time.Time) ([]models.StockLot, error) {
	var lots []models.StockLot
	err := s.db.
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, storageErr("list lots", err)
	}
	return lots, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorageUnavailable, op, err)
}
