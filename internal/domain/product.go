package domain

import "time"

// Product is the catalog entry the cart treats as a read-only price/name
// oracle. Inactive products cannot be added to carts and are dropped from
// them on refresh.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Category    string    `json:"category,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
