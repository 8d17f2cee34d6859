package models

import "time"

// WasteCategory prices a kind of waste and decides whether the requester pays.
type WasteCategory struct {
	ID                    string    `db:"id" json:"id"`
	Name                  string    `db:"name" json:"name"`
	PricePerKg            float64   `db:"price_per_kg" json:"pricePerKg"`
	IsUserPaymentRequired bool      `db:"is_user_payment_required" json:"isUserPaymentRequired"`
	IsActive              bool      `db:"is_active" json:"isActive"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// CategoryFilter constrains category listings.
type CategoryFilter struct {
	Active *bool
}
