package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-api/internal/domain"
)

type cartRepo interface {
	Create(ctx context.Context, sessionID string, userID *string) (*domain.Cart, error)
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	BindUser(ctx context.Context, cartID, userID string) error
	Delete(ctx context.Context, cartID string) error
	UpsertItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID string, quantity int, unitPriceCents int64) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Merge(ctx context.Context, guestCartID, userCartID string) error
	ListExpired(ctx context.Context) ([]domain.Cart, error)
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type ledger interface {
	Reserve(ctx context.Context, productID string, qty int) (bool, int, error)
	Release(ctx context.Context, productID string, qty int) error
}

// Service keeps the cart and the inventory ledger in lockstep: every
// quantity change in a cart is paired with an equal and opposite change in
// the product's reserved quantity. Any path that breaks the pairing is a
// stock-accounting leak.
type Service struct {
	repo     cartRepo
	products catalog
	ledger   ledger
	logger   *log.Logger
}

func New(repo cartRepo, products catalog, ledger ledger, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, ledger: ledger, logger: logger}
}

// GetOrCreate returns the session's cart, creating an empty one on first
// interaction.
func (s *Service) GetOrCreate(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetBySession(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.repo.Create(ctx, sessionID, nil)
	}
	return cart, err
}

// AddItem reserves qty units and merges them into the session's cart,
// snapshotting the product's current price and display data.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.resolveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ok, available, err := s.ledger.Reserve(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.OutOfStockError{ProductID: productID, Requested: qty, Available: available}
	}

	if err := s.repo.UpsertItem(ctx, cart.ID, *product, qty); err != nil {
		// Undo the hold so the failed write does not leak a reservation.
		if relErr := s.ledger.Release(ctx, productID, qty); relErr != nil {
			s.logger.Printf("cart: release after failed upsert product_id=%s qty=%d err=%v", productID, qty, relErr)
		}
		return nil, err
	}

	return s.repo.GetBySession(ctx, sessionID)
}

// UpdateItem sets a line to newQty, reserving or releasing the difference.
// newQty == 0 removes the line.
func (s *Service) UpdateItem(ctx context.Context, sessionID, productID string, newQty int) (*domain.Cart, error) {
	if newQty < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	cart, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line := cart.Item(productID)
	if line == nil {
		return nil, domain.ErrNotFound
	}

	if newQty == 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	product, err := s.resolveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	delta := newQty - line.Quantity
	if delta > 0 {
		ok, available, err := s.ledger.Reserve(ctx, productID, delta)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.OutOfStockError{ProductID: productID, Requested: delta, Available: available}
		}
	}

	if err := s.repo.SetItemQuantity(ctx, cart.ID, productID, newQty, product.PriceCents); err != nil {
		if delta > 0 {
			if relErr := s.ledger.Release(ctx, productID, delta); relErr != nil {
				s.logger.Printf("cart: release after failed update product_id=%s qty=%d err=%v", productID, delta, relErr)
			}
		}
		return nil, err
	}

	if delta < 0 {
		if err := s.ledger.Release(ctx, productID, -delta); err != nil {
			return nil, err
		}
	}

	return s.repo.GetBySession(ctx, sessionID)
}

// RemoveItem deletes a line and releases its full reservation.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line := cart.Item(productID)
	if line == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.ledger.Release(ctx, productID, line.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.repo.GetBySession(ctx, sessionID)
}

// Clear releases every line's reservation and empties the cart. Release is
// an idempotent clamp, so a retry after a partial failure converges instead
// of double-releasing.
func (s *Service) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, item := range cart.Items {
		if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		if err := s.repo.RemoveItem(ctx, cart.ID, item.ProductID); err != nil {
			return nil, err
		}
	}
	return s.repo.GetBySession(ctx, sessionID)
}

// Refresh re-reads every line's product from the catalog: prices are
// re-snapshotted, and lines whose product is gone or inactive are dropped
// with their reservations released, so delisted items cannot reappear at
// checkout.
func (s *Service) Refresh(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, domain.ErrNotFound) || (err == nil && !product.IsActive):
			s.logger.Printf("cart: dropping unavailable product_id=%s from cart %s", item.ProductID, cart.ID)
			if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return nil, err
			}
			if err := s.repo.RemoveItem(ctx, cart.ID, item.ProductID); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		case product.PriceCents != item.UnitPriceCents:
			if err := s.repo.SetItemQuantity(ctx, cart.ID, item.ProductID, item.Quantity, product.PriceCents); err != nil {
				return nil, err
			}
		}
	}

	return s.repo.GetBySession(ctx, sessionID)
}

// MergeIntoUser reconciles a guest session's cart with the user's existing
// cart at login. Reservations are keyed by product, so quantities combine
// without touching the ledger.
func (s *Service) MergeIntoUser(ctx context.Context, sessionID, userID string) (*domain.Cart, error) {
	guestCart, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	userCart, err := s.repo.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if guestCart.IsEmpty() {
		if userCart != nil {
			return userCart, nil
		}
		if guestCart != nil {
			if err := s.repo.BindUser(ctx, guestCart.ID, userID); err != nil {
				return nil, err
			}
			return s.repo.GetBySession(ctx, sessionID)
		}
		return s.repo.Create(ctx, sessionID, &userID)
	}

	if userCart.IsEmpty() {
		if userCart != nil {
			// Stale empty cart from an earlier session; the bound guest
			// cart supersedes it.
			if err := s.repo.Delete(ctx, userCart.ID); err != nil {
				return nil, err
			}
		}
		if err := s.repo.BindUser(ctx, guestCart.ID, userID); err != nil {
			return nil, err
		}
		return s.repo.GetBySession(ctx, sessionID)
	}

	if err := s.repo.Merge(ctx, guestCart.ID, userCart.ID); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: merged guest cart %s into user cart %s", guestCart.ID, userCart.ID)
	return s.repo.GetByUser(ctx, userID)
}

// ReleaseExpired drops guest carts whose session has expired, releasing
// each line's reservation first. Run periodically so abandoned guest carts
// do not hold stock forever. User-bound carts are never swept.
func (s *Service) ReleaseExpired(ctx context.Context) (int, error) {
	carts, err := s.repo.ListExpired(ctx)
	if err != nil {
		return 0, err
	}
	for _, cart := range carts {
		for _, item := range cart.Items {
			if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return 0, err
			}
		}
		if err := s.repo.Delete(ctx, cart.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return 0, err
		}
	}
	if len(carts) > 0 {
		s.logger.Printf("cart: swept %d expired carts", len(carts))
	}
	return len(carts), nil
}

func (s *Service) resolveProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrNotFound
	}
	return product, nil
}
