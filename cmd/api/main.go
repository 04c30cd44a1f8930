package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/ai"
	"github.com/freshtrack-app/freshtrack-golang/internal/cache"
	"github.com/freshtrack-app/freshtrack-golang/internal/database"
	"github.com/freshtrack-app/freshtrack-golang/internal/handlers"
	"github.com/freshtrack-app/freshtrack-golang/internal/notify"
	"github.com/freshtrack-app/freshtrack-golang/internal/nutrition"
	"github.com/freshtrack-app/freshtrack-golang/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("CRITICAL ERROR: JWT_SECRET environment variable is not set.")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Redis (Nutrition Cache) ---
	// Optional: a nil client just disables caching.
	redisClient := cache.OpenRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 3. --- Nutrition API Client ---
	nutritionKey := os.Getenv("NUTRITION_API_KEY")
	if nutritionKey == "" {
		log.Fatal("CRITICAL ERROR: NUTRITION_API_KEY environment variable is not set.")
	}
	nutritionClient := nutrition.NewClient(nutritionKey, redisClient)

	// 4. --- AI Service (Food Detection) ---
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("CRITICAL ERROR: GEMINI_API_KEY environment variable is not set.")
	}
	aiService, err := ai.NewAIService(geminiKey)
	if err != nil {
		log.Fatalf("Failed to initialize AI Service: %v", err)
	}

	// 5. --- Notification Pipeline ---
	registry := notify.NewRegistry()
	notifier := notify.NewNotifier(&notify.SQLNotificationLog{DB: db}, registry)

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:        db,
		Nutrition: nutritionClient,
		AIService: aiService,
		Registry:  registry,
		Notifier:  notifier,
	}

	// 6. --- Background Worker (Expiry Scanner) ---
	// Ten seconds is a demo-friendly interval; a real deployment would run
	// this hourly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := notify.NewScanner(&notify.SQLInventoryStore{DB: db}, notifier, 10*time.Second)
	go scanner.Start(ctx)

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	log.Println("Starting FreshTrack API server on port 8080...")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
