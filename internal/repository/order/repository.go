package order

import (
	"context"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/txn"
)

// ListFilter narrows the admin order listing. Zero values mean "any".
type ListFilter struct {
	Status domain.OrderStatus
	UserID string
	Limit  int
	Offset int
}

// Repository persists orders. Create and AddItem run on the caller's
// transaction: checkout must write the order, its items, the inventory
// commits and the cart clear atomically.
type Repository interface {
	Create(ctx context.Context, tx txn.Tx, o *domain.Order) (*domain.Order, error)
	AddItem(ctx context.Context, tx txn.Tx, item domain.OrderItem) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdateFulfillment(ctx context.Context, id string, status domain.FulfillmentStatus) error
}
