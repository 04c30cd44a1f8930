package handlers

import (
	"database/sql"

	"github.com/freshtrack-app/freshtrack-golang/internal/ai"
	"github.com/freshtrack-app/freshtrack-golang/internal/notify"
	"github.com/freshtrack-app/freshtrack-golang/internal/nutrition"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB        *sql.DB
	Nutrition *nutrition.Client
	AIService *ai.AIService

	// Live notification pipeline.
	Registry *notify.Registry
	Notifier *notify.Notifier
}
