package main

import (
	"log"
	"strings"

	"kitchreq-backend/internal/audit"
	"kitchreq-backend/internal/auth"
	"kitchreq-backend/internal/config"
	"kitchreq-backend/internal/database"
	"kitchreq-backend/internal/inventory"
	"kitchreq-backend/internal/kitchen"
	"kitchreq-backend/internal/ledger"
	"kitchreq-backend/internal/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	store := ledger.NewStore(database.DB)
	engine := kitchen.NewEngine(database.DB)
	query := reports.NewQuery(database.DB)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Requisitions (stock lots)
	protected.Post("/lots", inventory.CreateLotHandler(store))
	protected.Put("/lots/:id", inventory.UpdateLotHandler(store))
	protected.Get("/lots", inventory.ListLotsHandler(query))

	// Meal preparation
	protected.Post("/meals", inventory.PrepareMealHandler(engine))
	protected.Get("/meals", inventory.ListMealsHandler(query))

	// Current stock summary
	protected.Get("/stock/current", inventory.CurrentStockHandler(query))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
