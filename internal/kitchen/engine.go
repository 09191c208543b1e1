// Package kitchen applies meal preparations against the stock ledger. A meal
// is a named batch of line items; the whole batch is deducted atomically or
// not at all.
package kitchen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kitchreq-backend/internal/apperr"
	"kitchreq-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MealLine is one ingredient of a meal. The deduction for the line is
// QuantityPerPortion * Portions, drawn FIFO from the lots matching
// (Item, Unit).
type MealLine struct {
	Item               string
	Unit               string
	QuantityPerPortion decimal.Decimal
	Portions           int
}

type Engine struct {
	db *gorm.DB

	// One mutex per (item, unit) pair. Serializes in-process consumptions
	// that touch the same stock; the conditional updates below guard
	// against writers outside this process.
	mu    sync.Mutex
	locks map[lotKey]*sync.Mutex
}

type lotKey struct {
	item string
	unit string
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, locks: make(map[lotKey]*sync.Mutex)}
}

// maxAttempts bounds the optimistic retry loop when a concurrent writer
// invalidates the sufficiency check mid-transaction.
const maxAttempts = 3

// ConsumeForMeal validates every line, checks sufficiency across all matching
// lots and, in a single transaction, deducts FIFO (oldest lot first, splitting
// across lots as needed) and appends one ConsumptionRecord per line. If any
// line cannot be satisfied, nothing is deducted and nothing is recorded.
func (e *Engine) ConsumeForMeal(mealName string, lines []MealLine) ([]models.ConsumptionRecord, error) {
	mealName = strings.TrimSpace(mealName)
	if mealName == "" {
		return nil, fmt.Errorf("%w: meal name is required", apperr.ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: a meal needs at least one line item", apperr.ErrInvalidInput)
	}

	needs := make(map[lotKey]decimal.Decimal)
	normalized := make([]MealLine, 0, len(lines))
	for _, line := range lines {
		line.Item = strings.TrimSpace(line.Item)
		if line.Item == "" {
			return nil, fmt.Errorf("%w: item name is required", apperr.ErrInvalidInput)
		}
		if !models.ValidUnit(line.Unit) {
			return nil, fmt.Errorf("%w: unknown unit %q for %s", apperr.ErrInvalidInput, line.Unit, line.Item)
		}
		if !line.QuantityPerPortion.IsPositive() {
			return nil, fmt.Errorf("%w: quantity per portion must be positive for %s", apperr.ErrInvalidInput, line.Item)
		}
		if line.Portions <= 0 {
			return nil, fmt.Errorf("%w: portions must be positive for %s", apperr.ErrInvalidInput, line.Item)
		}

		key := lotKey{item: line.Item, unit: line.Unit}
		used := line.QuantityPerPortion.Mul(decimal.NewFromInt(int64(line.Portions)))
		needs[key] = needs[key].Add(used)
		normalized = append(normalized, line)
	}

	keys := sortedKeys(needs)
	unlock := e.lockKeys(keys)
	defer unlock()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		records, err := e.consumeOnce(mealName, normalized, keys, needs)
		if errors.Is(err, errStockMoved) {
			continue
		}
		return records, err
	}
	return nil, fmt.Errorf("%w: stock for %q kept changing, giving up after %d attempts",
		apperr.ErrConflict, mealName, maxAttempts)
}

// errStockMoved signals that a conditional deduction hit zero rows: a
// concurrent writer beat us between the sufficiency check and the update.
var errStockMoved = errors.New("stock moved concurrently")

func (e *Engine) consumeOnce(mealName string, lines []MealLine, keys []lotKey, needs map[lotKey]decimal.Decimal) ([]models.ConsumptionRecord, error) {
	var records []models.ConsumptionRecord

	err := e.db.Transaction(func(tx *gorm.DB) error {
		lotsByKey := make(map[lotKey][]models.StockLot, len(keys))
		var unknown []string
		var shortfalls []apperr.Shortfall

		// Sufficiency check over every key before touching anything.
		for _, key := range keys {
			var lots []models.StockLot
			if err := tx.
				Where("item = ? AND unit = ?", key.item, key.unit).
				Order("created_at ASC, id ASC").
				Find(&lots).Error; err != nil {
				return storageErr("load lots", err)
			}
			if len(lots) == 0 {
				unknown = append(unknown, fmt.Sprintf("%s (%s)", key.item, key.unit))
				continue
			}
			lotsByKey[key] = lots

			available := decimal.Zero
			for _, lot := range lots {
				available = available.Add(lot.RemainingQuantity)
			}
			required := needs[key]
			if available.LessThan(required) {
				shortfalls = append(shortfalls, apperr.Shortfall{
					Item:      key.item,
					Unit:      key.unit,
					Required:  required,
					Available: available,
					Missing:   required.Sub(available),
				})
			}
		}

		if len(unknown) > 0 {
			return fmt.Errorf("%w: no stock lot exists for %s", apperr.ErrUnknownItem, strings.Join(unknown, ", "))
		}
		if len(shortfalls) > 0 {
			return &apperr.InsufficientStockError{Shortfalls: shortfalls}
		}

		// Deduct FIFO. Each update re-checks the remaining balance so a
		// concurrent deduction can never push a lot negative.
		prepared := time.Now()
		for _, key := range keys {
			remaining := needs[key]
			for _, lot := range lotsByKey[key] {
				if !remaining.IsPositive() {
					break
				}
				take := remaining
				if lot.RemainingQuantity.LessThan(take) {
					take = lot.RemainingQuantity
				}
				if !take.IsPositive() {
					continue
				}
				res := tx.Model(&models.StockLot{}).
					Where("id = ? AND remaining_quantity >= ?", lot.ID, take).
					Update("remaining_quantity", gorm.Expr("remaining_quantity - ?", take))
				if res.Error != nil {
					return storageErr("deduct from lot", res.Error)
				}
				if res.RowsAffected == 0 {
					return errStockMoved
				}
				remaining = remaining.Sub(take)
			}
			if remaining.IsPositive() {
				// The snapshot we planned from no longer holds.
				return errStockMoved
			}
		}

		records = make([]models.ConsumptionRecord, 0, len(lines))
		for _, line := range lines {
			records = append(records, models.ConsumptionRecord{
				MealName:           mealName,
				Item:               line.Item,
				Unit:               line.Unit,
				QuantityPerPortion: line.QuantityPerPortion,
				Portions:           line.Portions,
				TotalQuantityUsed:  line.QuantityPerPortion.Mul(decimal.NewFromInt(int64(line.Portions))),
				PreparedAt:         prepared,
			})
		}
		if err := tx.Create(&records).Error; err != nil {
			return storageErr("append consumption records", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// lockKeys acquires the per-key mutexes in sorted key order so two meals
// sharing ingredients cannot deadlock. The returned func releases them.
func (e *Engine) lockKeys(keys []lotKey) func() {
	mus := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		e.mu.Lock()
		mu, ok := e.locks[key]
		if !ok {
			mu = &sync.Mutex{}
			e.locks[key] = mu
		}
		e.mu.Unlock()
		mu.Lock()
		mus = append(mus, mu)
	}
	return func() {
		for i := len(mus) - 1; i >= 0; i-- {
			mus[i].Unlock()
		}
	}
}

func sortedKeys(needs map[lotKey]decimal.Decimal) []lotKey {
	keys := make([]lotKey, 0, len(needs))
	for key := range needs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].item != keys[j].item {
			return keys[i].item < keys[j].item
		}
		return keys[i].unit < keys[j].unit
	})
	return keys
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorageUnavailable, op, err)
}
