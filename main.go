package main

import (
	"context"
	"log"

	"app/cache"
	"app/config"
	"app/database"
	"app/handlers"
	"app/ingestion"
	"app/middleware"
	"app/query"
	"app/routes"
	"app/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	middleware.JWTSecret = []byte(config.AppConfig.JWTSecret)

	// Initialize database
	pool, err := database.Connect(context.Background(), config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	store := database.NewPgStore(pool)

	// Shared TTL cache, cleared by the ingestion pipeline
	ttlCache := cache.New(config.AppConfig.CacheSweepInterval)
	defer ttlCache.Stop()

	// Core services
	executor := query.NewExecutor(store)
	aggregator := stats.NewAggregator(store, ttlCache)
	pipeline := ingestion.NewPipeline(store, ttlCache)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // bulk CSV uploads
	})

	// Add CORS middleware
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app,
		handlers.NewTransactionHandler(executor, aggregator, store),
		handlers.NewUploadHandler(pipeline, store),
		store,
	)

	// Start server
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
