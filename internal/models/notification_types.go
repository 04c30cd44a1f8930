package models

import (
	"time"
)

// Notification severity tags.
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification is the model for the 'notifications' table. Rows are the
// durable record of every event we (maybe) pushed live: a client that was
// offline recovers them from GET /v1/notifications on its next poll.
// ProductName is denormalized so the notification survives the product
// being renamed or deleted.
type Notification struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	ProductName string    `json:"productName" db:"product_name"`
	Message     string    `json:"message" db:"message"`
	Type        string    `json:"type" db:"type"`
	IsRead      bool      `json:"isRead" db:"is_read"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
