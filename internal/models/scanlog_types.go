package models

import (
	"time"
)

// Scan outcomes.
const (
	ScanStatusScanned  = "scanned"
	ScanStatusExpired  = "expired"
	ScanStatusNotFound = "not_found"
)

// ScanLog is the model for the 'scan_logs' table: one row per barcode scan
// or image detection, whether or not it resolved to a catalog product.
type ScanLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Barcode   string    `json:"barcode" db:"barcode"`
	ProductID *string   `json:"productId,omitempty" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Status    string    `json:"status" db:"status"`
	ScannedAt time.Time `json:"scannedAt" db:"scanned_at"`
}
