package inventory

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-api/internal/domain"
)

// errOutOfStock is internal to Reserve: it aborts the locked mutation
// without surfacing as a caller error, since a failed reservation is an
// expected business outcome.
var errOutOfStock = errors.New("out of stock")

type ledgerRepo interface {
	Get(ctx context.Context, productID string) (*domain.Inventory, error)
	List(ctx context.Context) ([]domain.Inventory, error)
	Create(ctx context.Context, productID string, quantity int) (*domain.Inventory, error)
	Mutate(ctx context.Context, productID string, fn func(*domain.Inventory) error) (*domain.Inventory, error)
}

// Service is the inventory ledger. All reservation-side mutations go through
// the repository's locked Mutate primitive; checkout commits through its own
// transaction using the repository directly.
type Service struct {
	repo   ledgerRepo
	logger *log.Logger
}

func New(repo ledgerRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, productID string) (*domain.Inventory, error) {
	return s.repo.Get(ctx, productID)
}

func (s *Service) List(ctx context.Context) ([]domain.Inventory, error) {
	return s.repo.List(ctx)
}

// IsInStock reports whether qty units are available right now. The answer is
// advisory; Reserve re-checks under the row lock.
func (s *Service) IsInStock(ctx context.Context, productID string, qty int) (bool, error) {
	rec, err := s.repo.Get(ctx, productID)
	if err != nil {
		return false, err
	}
	return rec.IsInStock(qty), nil
}

// Reserve places a soft hold on qty units. ok=false with the current
// available quantity is the "out of stock" business outcome, not an error.
// The check and the increment happen under the same row lock, so concurrent
// reservations can never both succeed on the last unit.
func (s *Service) Reserve(ctx context.Context, productID string, qty int) (ok bool, available int, err error) {
	if qty <= 0 {
		return false, 0, errors.New("quantity must be positive")
	}
	_, err = s.repo.Mutate(ctx, productID, func(rec *domain.Inventory) error {
		available = rec.AvailableQuantity()
		if !rec.IsInStock(qty) {
			return errOutOfStock
		}
		rec.Reserve(qty)
		return nil
	})
	if errors.Is(err, errOutOfStock) {
		s.logger.Printf("inventory: reserve failed product_id=%s requested=%d available=%d", productID, qty, available)
		return false, available, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, available, nil
}

// Release returns a hold. Clamped at zero so releasing more than is held
// (double release, sweep races) is harmless.
func (s *Service) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	_, err := s.repo.Mutate(ctx, productID, func(rec *domain.Inventory) error {
		rec.Release(qty)
		return nil
	})
	return err
}

// SetQuantity is the admin absolute-stock override, lazily creating the
// record on first use.
func (s *Service) SetQuantity(ctx context.Context, productID string, qty int) (*domain.Inventory, error) {
	rec, err := s.repo.Mutate(ctx, productID, func(rec *domain.Inventory) error {
		rec.Quantity = qty
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return s.repo.Create(ctx, productID, qty)
	}
	if err != nil {
		return nil, err
	}
	if rec.IsLowStock() {
		s.logger.Printf("inventory: low stock product_id=%s quantity=%d threshold=%d", productID, rec.Quantity, rec.LowStockThreshold)
	}
	return rec, nil
}

// Restock adds on-hand stock.
func (s *Service) Restock(ctx context.Context, productID string, qty int) (*domain.Inventory, error) {
	if qty <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	return s.repo.Mutate(ctx, productID, func(rec *domain.Inventory) error {
		rec.Restock(qty)
		return nil
	})
}

// EnsureRecord creates the product's ledger record with zero stock if it
// does not exist yet. Called when a product is created.
func (s *Service) EnsureRecord(ctx context.Context, productID string) (*domain.Inventory, error) {
	rec, err := s.repo.Create(ctx, productID, 0)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return s.repo.Get(ctx, productID)
	}
	return rec, err
}
