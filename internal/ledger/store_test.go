package ledger

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"kitchreq-backend/internal/apperr"
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

func TestCreateLot(t *testing.T) {
	store := NewStore(newTestDB(t))

	lot, err := store.CreateLot("rice", decimal.NewFromInt(10), "kg")
	if err != nil {
		t.Fatalf("CreateLot returned error: %v", err)
	}
	if lot.ID == 0 {
		t.Fatal("CreateLot did not assign an id")
	}
	if !lot.TotalQuantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("TotalQuantity = %s, want 10", lot.TotalQuantity)
	}
	if !lot.RemainingQuantity.Equal(lot.TotalQuantity) {
		t.Fatalf("RemainingQuantity = %s, want %s", lot.RemainingQuantity, lot.TotalQuantity)
	}

	// Same item/unit creates a second lot, never a merge.
	second, err := store.CreateLot("rice", decimal.NewFromInt(5), "kg")
	if err != nil {
		t.Fatalf("CreateLot (second) returned error: %v", err)
	}
	if second.ID == lot.ID {
		t.Fatal("second requisition reused the first lot")
	}
}

func TestCreateLotValidation(t *testing.T) {
	store := NewStore(newTestDB(t))

	cases := []struct {
		name     string
		item     string
		quantity decimal.Decimal
		unit     string
	}{
		{"empty item", "", decimal.NewFromInt(1), "kg"},
		{"blank item", "   ", decimal.NewFromInt(1), "kg"},
		{"zero quantity", "rice", decimal.Zero, "kg"},
		{"negative quantity", "rice", decimal.NewFromInt(-2), "kg"},
		{"unknown unit", "rice", decimal.NewFromInt(1), "barrel"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateLot(tt.item, tt.quantity, tt.unit)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("CreateLot error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestUpdateLotResetsRemaining(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	lot, err := store.CreateLot("flour", decimal.NewFromInt(8), "kg")
	if err != nil {
		t.Fatalf("CreateLot returned error: %v", err)
	}

	// Simulate prior consumption against the lot.
	if err := db.Model(&models.StockLot{}).Where("id = ?", lot.ID).
		Update("remaining_quantity", decimal.NewFromInt(3)).Error; err != nil {
		t.Fatalf("seed consumption: %v", err)
	}

	updated, err := store.UpdateLot(lot.ID, "flour", decimal.NewFromInt(12), "kg")
	if err != nil {
		t.Fatalf("UpdateLot returned error: %v", err)
	}
	if !updated.TotalQuantity.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("TotalQuantity = %s, want 12", updated.TotalQuantity)
	}
	if !updated.RemainingQuantity.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("RemainingQuantity = %s, want 12 (restock discards prior draws)", updated.RemainingQuantity)
	}
}

func TestUpdateLotNotFound(t *testing.T) {
	store := NewStore(newTestDB(t))

	_, err := store.UpdateLot(999, "flour", decimal.NewFromInt(1), "kg")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("UpdateLot error = %v, want ErrNotFound", err)
	}
}

func TestFindMatchingLotsOrder(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	newest := models.StockLot{Item: "flour", Unit: "kg", TotalQuantity: decimal.NewFromInt(5), RemainingQuantity: decimal.NewFromInt(5), CreatedAt: base.Add(2 * time.Hour)}
	oldest := models.StockLot{Item: "flour", Unit: "kg", TotalQuantity: decimal.NewFromInt(2), RemainingQuantity: decimal.NewFromInt(2), CreatedAt: base}
	other := models.StockLot{Item: "flour", Unit: "gram", TotalQuantity: decimal.NewFromInt(900), RemainingQuantity: decimal.NewFromInt(900), CreatedAt: base.Add(time.Hour)}
	for _, lot := range []*models.StockLot{&newest, &oldest, &other} {
		if err := db.Create(lot).Error; err != nil {
			t.Fatalf("seed lot: %v", err)
		}
	}

	lots, err := store.FindMatchingLots("flour", "kg")
	if err != nil {
		t.Fatalf("FindMatchingLots returned error: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("got %d lots, want 2 (same item, different unit must not match)", len(lots))
	}
	if lots[0].ID != oldest.ID || lots[1].ID != newest.ID {
		t.Fatalf("lots not ordered oldest first: got ids %d, %d", lots[0].ID, lots[1].ID)
	}
}

func TestListLotsInclusiveRange(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	for d := 1; d <= 5; d++ {
		lot := models.StockLot{Item: "yam", Unit: "tubers", TotalQuantity: decimal.NewFromInt(int64(d)), RemainingQuantity: decimal.NewFromInt(int64(d)), CreatedAt: day(d)}
		if err := db.Create(&lot).Error; err != nil {
			t.Fatalf("seed lot: %v", err)
		}
	}

	lots, err := store.ListLots(day(2), day(4))
	if err != nil {
		t.Fatalf("ListLots returned error: %v", err)
	}
	if len(lots) != 3 {
		t.Fatalf("got %d lots, want 3 (bounds are inclusive)", len(lots))
	}
	for i := 1; i < len(lots); i++ {
		if lots[i].CreatedAt.Before(lots[i-1].CreatedAt) {
			t.Fatal("lots not in ascending creation order")
		}
	}
}
