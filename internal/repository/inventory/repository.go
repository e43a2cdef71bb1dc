package inventory

import (
	"context"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/txn"
)

// Repository persists inventory records. Mutate is the single
// lock-read-mutate-commit primitive: every reservation-side change goes
// through it so no caller can do an unlocked read-then-write. GetForUpdate
// and Save expose the same locked contract inside a caller-owned
// transaction, which checkout needs to commit several products atomically.
type Repository interface {
	Get(ctx context.Context, productID string) (*domain.Inventory, error)
	List(ctx context.Context) ([]domain.Inventory, error)
	Create(ctx context.Context, productID string, quantity int) (*domain.Inventory, error)
	Mutate(ctx context.Context, productID string, fn func(*domain.Inventory) error) (*domain.Inventory, error)
	GetForUpdate(ctx context.Context, tx txn.Tx, productID string) (*domain.Inventory, error)
	Save(ctx context.Context, tx txn.Tx, rec *domain.Inventory) error
}
