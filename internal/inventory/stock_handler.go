package inventory

import (
	"kitchreq-backend/internal/reports"

	"github.com/gofiber/fiber/v2"
)

// GET /api/stock/current
// Remaining stock per item/unit, summed over all lots.
func CurrentStockHandler(query *reports.Query) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stocks, err := query.CurrentStock()
		if err != nil {
			return httpError(err)
		}
		return c.JSON(stocks)
	}
}
