package domain

import "time"

// Cart is a per-session collection of line items. Aggregates are recomputed
// from the lines on every mutation, never trusted from a stale stored value.
type Cart struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"sessionId"`
	UserID      *string    `json:"userId,omitempty"`
	Items       []CartItem `json:"items"`
	TotalCents  int64      `json:"totalCents"`
	TotalItems  int        `json:"totalItems"`
	LastUpdated time.Time  `json:"lastUpdated"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CartItem is one line of a cart: at most one per (cart, product), quantity
// strictly positive, with price and display data snapshotted from the
// catalog and refreshed on write.
type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	ProductName    string    `json:"productName"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	AddedAt        time.Time `json:"addedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TotalCents is the line total at the snapshotted unit price.
func (i CartItem) TotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line for productID, or nil.
func (c *Cart) Item(productID string) *CartItem {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return &c.Items[idx]
		}
	}
	return nil
}
