package product

import (
	"context"
	"io"
	"log"

	"storefront-api/internal/domain"
)

type productRepo interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type ledger interface {
	EnsureRecord(ctx context.Context, productID string) (*domain.Inventory, error)
}

// Service is the catalog. Every product gets an inventory ledger record the
// moment it is created.
type Service struct {
	repo   productRepo
	ledger ledger
	logger *log.Logger
}

func New(repo productRepo, ledger ledger, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, ledger: ledger, logger: logger}
}

// List returns active products. Admin callers pass includeInactive to see
// delisted ones too.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.EnsureRecord(ctx, created.ID); err != nil {
		return nil, err
	}
	s.logger.Printf("product: created %s (%s)", created.ID, created.Name)
	return created, nil
}

func (s *Service) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	return s.repo.Update(ctx, p)
}
