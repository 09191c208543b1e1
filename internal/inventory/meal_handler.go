package inventory

import (
	"errors"
	"fmt"

	"kitchreq-backend/internal/apperr"
	"kitchreq-backend/internal/audit"
	"kitchreq-backend/internal/kitchen"
	"kitchreq-backend/internal/models"
	"kitchreq-backend/internal/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type MealItemRequest struct {
	Item               string          `json:"item"`
	Unit               string          `json:"unit"`
	QuantityPerPortion decimal.Decimal `json:"quantity_per_portion"`
	Portions           int             `json:"portions"`
}

type PrepareMealRequest struct {
	MealName string            `json:"meal_name"`
	Items    []MealItemRequest `json:"items"`
}

type ConsumptionResponse struct {
	ID                 uint            `json:"id"`
	MealName           string          `json:"meal_name"`
	Item               string          `json:"item"`
	Unit               string          `json:"unit"`
	QuantityPerPortion decimal.Decimal `json:"quantity_per_portion"`
	Portions           int             `json:"portions"`
	TotalQuantityUsed  decimal.Decimal `json:"total_quantity_used"`
	PreparedAt         string          `json:"prepared_at"`
}

func consumptionResponse(rec *models.ConsumptionRecord) ConsumptionResponse {
	return ConsumptionResponse{
		ID:                 rec.ID,
		MealName:           rec.MealName,
		Item:               rec.Item,
		Unit:               rec.Unit,
		QuantityPerPortion: rec.QuantityPerPortion,
		Portions:           rec.Portions,
		TotalQuantityUsed:  rec.TotalQuantityUsed,
		PreparedAt:         rec.PreparedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/meals
// Deducts every line of the meal atomically. On insufficient stock the
// response body carries the per-item shortfalls so the kitchen knows what to
// requisition.
func PrepareMealHandler(engine *kitchen.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PrepareMealRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		lines := make([]kitchen.MealLine, 0, len(body.Items))
		for _, item := range body.Items {
			lines = append(lines, kitchen.MealLine{
				Item:               item.Item,
				Unit:               item.Unit,
				QuantityPerPortion: item.QuantityPerPortion,
				Portions:           item.Portions,
			})
		}

		records, err := engine.ConsumeForMeal(body.MealName, lines)
		if err != nil {
			var insufficient *apperr.InsufficientStockError
			if errors.As(err, &insufficient) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error":      "Not enough stock for this meal",
					"shortfalls": insufficient.Shortfalls,
				})
			}
			return httpError(err)
		}

		if userID, userName, uerr := getUserInfo(c); uerr == nil {
			for i := range records {
				_ = audit.WriteLog(audit.LogOptions{
					UserID:      userID,
					UserName:    userName,
					EntityType:  "consumption",
					EntityID:    records[i].ID,
					Action:      models.AuditActionConsume,
					Description: fmt.Sprintf("Meal %q used %s %s of %s", records[i].MealName, records[i].TotalQuantityUsed, records[i].Unit, records[i].Item),
					After:       records[i],
				})
			}
		}

		resp := make([]ConsumptionResponse, 0, len(records))
		for i := range records {
			resp = append(resp, consumptionResponse(&records[i]))
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/meals?start=2025-01-01&end=2025-01-31
func ListMealsHandler(query *reports.Query) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseDateRange(c)
		if err != nil {
			return err
		}

		records, err := query.ConsumptionInRange(from, to)
		if err != nil {
			return httpError(err)
		}

		resp := make([]ConsumptionResponse, 0, len(records))
		for i := range records {
			resp = append(resp, consumptionResponse(&records[i]))
		}

		return c.JSON(resp)
	}
}
