package product

import (
	"context"

	"storefront-api/internal/domain"
)

type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
}
