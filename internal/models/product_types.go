package models

import (
	"time"
)

// Product is the model for the 'products' table (the shared warehouse
// catalog). A product row is created once per distinct food name; every
// user's inventory items reference it by ID.
type Product struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
	Barcode  string `json:"barcode" db:"barcode"`
	// NutritionID is nullable: lookup failures still produce a product row.
	NutritionID *string   `json:"nutritionId,omitempty" db:"nutrition_id"`
	AddedAt     time.Time `json:"addedAt" db:"added_at"`

	// Join field (populated manually, not in the DB table)
	Nutrition *Nutrition `json:"nutrition,omitempty" db:"-"`
}
