package domain

import "time"

// Inventory is the per-product stock ledger record. ReservedQuantity is a
// soft hold taken when an item enters a cart; Quantity only shrinks when a
// reservation is committed at checkout.
type Inventory struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"productId"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reservedQuantity"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	TrackQuantity     bool      `json:"trackQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AvailableQuantity is on-hand stock minus active reservations, clamped so
// callers never observe a negative value.
func (i *Inventory) AvailableQuantity() int {
	if avail := i.Quantity - i.ReservedQuantity; avail > 0 {
		return avail
	}
	return 0
}

// IsInStock reports whether qty units could be reserved right now. Records
// that do not track quantity always pass.
func (i *Inventory) IsInStock(qty int) bool {
	if !i.TrackQuantity {
		return true
	}
	return i.AvailableQuantity() >= qty
}

// IsLowStock reports whether on-hand stock fell to the reorder threshold.
func (i *Inventory) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// Reserve adds a soft hold. The caller must have checked IsInStock under the
// same row lock.
func (i *Inventory) Reserve(qty int) {
	i.ReservedQuantity += qty
}

// Release returns a hold, clamping at zero so a double release cannot drive
// the reservation count negative.
func (i *Inventory) Release(qty int) {
	i.ReservedQuantity -= qty
	if i.ReservedQuantity < 0 {
		i.ReservedQuantity = 0
	}
}

// Commit converts a reservation into an on-hand deduction. The only
// operation that reduces Quantity besides an admin override. Untracked
// records may sell past their on-hand count, so the deduction clamps at
// zero; tracked records are availability-checked before committing.
func (i *Inventory) Commit(qty int) {
	i.Quantity -= qty
	if i.Quantity < 0 && !i.TrackQuantity {
		i.Quantity = 0
	}
	i.ReservedQuantity -= qty
	if i.ReservedQuantity < 0 {
		i.ReservedQuantity = 0
	}
}

// Restock adds on-hand stock.
func (i *Inventory) Restock(qty int) {
	i.Quantity += qty
}
