package models

import (
	"time"
)

// Inventory item lifecycle states. The only legal transition is
// active -> expired, performed by the expiry scanner. Deletion is the
// only other way out of 'active'.
const (
	ItemStatusActive  = "active"
	ItemStatusExpired = "expired"
)

// InventoryItem is the model for the 'inventory_items' table: one row per
// product instance sitting in a user's kitchen.
type InventoryItem struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"userId" db:"user_id"`
	ProductID  string    `json:"productId" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	ExpiryDate time.Time `json:"expiryDate" db:"expiry_date"`
	Status     string    `json:"status" db:"status"`
	Notes      string    `json:"notes" db:"notes"`
	AddedAt    time.Time `json:"addedAt" db:"added_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Join fields (populated manually, not in the DB table)
	ProductName string     `json:"name,omitempty" db:"-"`
	Category    string     `json:"category,omitempty" db:"-"`
	Nutrition   *Nutrition `json:"nutrition,omitempty" db:"-"`
}
