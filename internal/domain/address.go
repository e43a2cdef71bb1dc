package domain

import "time"

// Address is a shipping address owned by a user. Checkout copies it into
// the order as a JSON snapshot rather than referencing the row.
type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone,omitempty"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
}
