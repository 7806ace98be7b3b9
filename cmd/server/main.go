package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/mealweek/mealweek/blob"
	"github.com/mealweek/mealweek/config"
	"github.com/mealweek/mealweek/controllers"
	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/jobs"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/routes"
	"github.com/mealweek/mealweek/services"
)

func main() {
	// Initialize Structured Logger
	logger.Init()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system env vars")
	}

	// Initialize DB
	database.InitDB()

	// Blob storage backend
	store, err := blob.OpenFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to open blob store", "error", err)
		return
	}
	logger.Info("Blob store ready", "driver", store.Driver())

	// Asset service + background sweep janitor
	assetSvc := services.NewAssetService(database.DB, store)
	janitor := jobs.GetJanitor(assetSvc)
	controllers.Init(assetSvc, janitor)

	// Setup Router
	r := routes.SetupRouter()

	port := config.GetEnv("PORT", "8080")
	logger.Info("Server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Error("Server failed to start", "error", err)
	}
}
