package models

import (
	"time"
)

// Nutrition is the model for the 'nutritions' table.
// Values are stored as strings because the upstream API returns
// "Only available for premium subscribers." for some fields, which we
// normalize to "N/A" instead of losing the whole row.
type Nutrition struct {
	ID           string    `json:"id" db:"id"`
	Protein      string    `json:"protein" db:"protein"`
	Carbohydrate string    `json:"carbohydrate" db:"carbohydrate"`
	Fat          string    `json:"fat" db:"fat"`
	Fiber        string    `json:"fiber" db:"fiber"`
	Calories     string    `json:"calories" db:"calories"`
	AddedAt      time.Time `json:"addedAt" db:"added_at"`
}
