package reports

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"kitchreq-backend/internal/database"
	"kitchreq-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func day(d int) time.Time {
	return time.Date(2025, 4, d, 10, 0, 0, 0, time.UTC)
}

func TestRequisitionsInRange(t *testing.T) {
	db := newTestDB(t)
	query := NewQuery(db)

	for d := 1; d <= 4; d++ {
		lot := models.StockLot{
			Item:              "beans",
			Unit:              "kg",
			TotalQuantity:     decimal.NewFromInt(int64(d)),
			RemainingQuantity: decimal.NewFromInt(int64(d)),
			CreatedAt:         day(d),
		}
		if err := db.Create(&lot).Error; err != nil {
			t.Fatalf("seed lot: %v", err)
		}
	}

	lots, err := query.RequisitionsInRange(day(2), day(3))
	if err != nil {
		t.Fatalf("RequisitionsInRange returned error: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("got %d lots, want 2 (bounds inclusive)", len(lots))
	}
	if lots[0].CreatedAt.After(lots[1].CreatedAt) {
		t.Fatal("lots not in ascending order")
	}

	// Reads are idempotent: same bounds, no writes, same result.
	again, err := query.RequisitionsInRange(day(2), day(3))
	if err != nil {
		t.Fatalf("RequisitionsInRange (second) returned error: %v", err)
	}
	ids := func(ls []models.StockLot) []uint {
		out := make([]uint, len(ls))
		for i, l := range ls {
			out[i] = l.ID
		}
		return out
	}
	if !reflect.DeepEqual(ids(lots), ids(again)) {
		t.Fatalf("repeated read differs: %v vs %v", ids(lots), ids(again))
	}
}

func TestConsumptionInRange(t *testing.T) {
	db := newTestDB(t)
	query := NewQuery(db)

	for d := 1; d <= 3; d++ {
		rec := models.ConsumptionRecord{
			MealName:           "eba",
			Item:               "garri",
			Unit:               "kg",
			QuantityPerPortion: decimal.NewFromInt(1),
			Portions:           d,
			TotalQuantityUsed:  decimal.NewFromInt(int64(d)),
			PreparedAt:         day(d),
		}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	records, err := query.ConsumptionInRange(day(2), day(3))
	if err != nil {
		t.Fatalf("ConsumptionInRange returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].PreparedAt.After(records[1].PreparedAt) {
		t.Fatal("records not in ascending order")
	}
}

func TestCurrentStock(t *testing.T) {
	db := newTestDB(t)
	query := NewQuery(db)

	seed := []models.StockLot{
		{Item: "rice", Unit: "kg", TotalQuantity: decimal.NewFromInt(10), RemainingQuantity: decimal.NewFromInt(6), CreatedAt: day(1)},
		{Item: "rice", Unit: "kg", TotalQuantity: decimal.NewFromInt(5), RemainingQuantity: decimal.NewFromInt(5), CreatedAt: day(2)},
		{Item: "oil", Unit: "litre", TotalQuantity: decimal.NewFromInt(2), RemainingQuantity: decimal.NewFromInt(1), CreatedAt: day(1)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed lot: %v", err)
		}
	}

	stocks, err := query.CurrentStock()
	if err != nil {
		t.Fatalf("CurrentStock returned error: %v", err)
	}
	if len(stocks) != 2 {
		t.Fatalf("got %d rows, want 2 (grouped by item/unit)", len(stocks))
	}

	// Ordered by item: oil before rice.
	if stocks[0].Item != "oil" || stocks[1].Item != "rice" {
		t.Fatalf("unexpected order: %s, %s", stocks[0].Item, stocks[1].Item)
	}
	if !stocks[0].Remaining.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("oil remaining = %s, want 1", stocks[0].Remaining)
	}
	if !stocks[1].Remaining.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("rice remaining = %s, want 11 (6 + 5 across lots)", stocks[1].Remaining)
	}
	if stocks[1].Lots != 2 {
		t.Fatalf("rice lots = %d, want 2", stocks[1].Lots)
	}
}
