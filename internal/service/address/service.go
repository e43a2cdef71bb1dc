package address

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
)

type addressRepo interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Delete(ctx context.Context, id, userID string) error
}

// Service manages a user's address book.
type Service struct {
	repo addressRepo
}

func New(repo addressRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	if a.FullName == "" || a.Line1 == "" || a.City == "" || a.PostalCode == "" {
		return nil, errors.New("fullName, line1, city and postalCode are required")
	}
	if a.Country == "" {
		a.Country = "IN"
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id, userID string) (*domain.Address, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}
