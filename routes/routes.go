package routes

import (
	"context"

	"app/database"
	"app/handlers"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, txn *handlers.TransactionHandler, uploads *handlers.UploadHandler, store database.Store) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := store.Ping(context.Background()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Database ping failed"})
		}
		return c.JSON(fiber.Map{"status": "success"})
	})

	api := app.Group("/api/v1")

	// --- Transactions (read path) ---
	transactions := api.Group("/transactions")
	transactions.Get("/", txn.HandleListTransactions)
	transactions.Get("/filter-options", txn.HandleFilterOptions)
	transactions.Get("/stats", txn.HandleStats)

	// --- Ingestion ---
	transactions.Post("/upload", middleware.JWTMiddleware, uploads.HandleUploadTransactions)
	api.Get("/uploads", middleware.JWTMiddleware, uploads.HandleListUploads)
}
