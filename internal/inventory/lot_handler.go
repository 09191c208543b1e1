package inventory

import (
	"fmt"

	"kitchreq-backend/internal/audit"
	"kitchreq-backend/internal/ledger"
	"kitchreq-backend/internal/models"
	"kitchreq-backend/internal/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type LotRequest struct {
	Item     string          `json:"item"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

type LotResponse struct {
	ID                uint            `json:"id"`
	Item              string          `json:"item"`
	Unit              string          `json:"unit"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	CreatedAt         string          `json:"created_at"`
}

func lotResponse(lot *models.StockLot) LotResponse {
	return LotResponse{
		ID:                lot.ID,
		Item:              lot.Item,
		Unit:              lot.Unit,
		TotalQuantity:     lot.TotalQuantity,
		RemainingQuantity: lot.RemainingQuantity,
		CreatedAt:         lot.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/lots
func CreateLotHandler(store *ledger.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		lot, err := store.CreateLot(body.Item, body.Quantity, body.Unit)
		if err != nil {
			return httpError(err)
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_lot",
				EntityID:    lot.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Requisition: %s - %s %s", lot.Item, lot.TotalQuantity, lot.Unit),
				After:       lot,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(lotResponse(lot))
	}
}

// PUT /api/lots/:id
// Destructive correction: replaces the lot's fields and resets its remaining
// balance to the new quantity.
func UpdateLotHandler(store *ledger.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid lot id")
		}

		var body LotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before, err := store.GetLot(uint(id))
		if err != nil {
			return httpError(err)
		}

		lot, err := store.UpdateLot(uint(id), body.Item, body.Quantity, body.Unit)
		if err != nil {
			return httpError(err)
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_lot",
				EntityID:    lot.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Correction: %s restocked to %s %s", lot.Item, lot.TotalQuantity, lot.Unit),
				Before:      before,
				After:       lot,
			})
		}

		return c.JSON(lotResponse(lot))
	}
}

// GET /api/lots?start=2025-01-01&end=2025-01-31
func ListLotsHandler(query *reports.Query) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseDateRange(c)
		if err != nil {
			return err
		}

		lots, err := query.RequisitionsInRange(from, to)
		if err != nil {
			return httpError(err)
		}

		resp := make([]LotResponse, 0, len(lots))
		for i := range lots {
			resp = append(resp, lotResponse(&lots[i]))
		}

		return c.JSON(resp)
	}
}
