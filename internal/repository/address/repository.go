package address

import (
	"context"

	"storefront-api/internal/domain"
)

// Repository persists shipping addresses. GetForUser enforces ownership:
// checkout must never ship to an address belonging to another user.
type Repository interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Delete(ctx context.Context, id, userID string) error
}
