package cart

import (
	"context"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/txn"
)

// Repository persists carts and their line items. Item mutations recompute
// the cart aggregates in the same transaction, so totals can never drift
// from the lines. ClearItems takes the caller's transaction because checkout
// empties the cart atomically with the order write.
type Repository interface {
	Create(ctx context.Context, sessionID string, userID *string) (*domain.Cart, error)
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	BindUser(ctx context.Context, cartID, userID string) error
	Delete(ctx context.Context, cartID string) error

	UpsertItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID string, quantity int, unitPriceCents int64) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	ClearItems(ctx context.Context, tx txn.Tx, cartID string) error

	Merge(ctx context.Context, guestCartID, userCartID string) error
	ListExpired(ctx context.Context) ([]domain.Cart, error)
}
