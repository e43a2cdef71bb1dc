package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sort"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
	"storefront-api/internal/repository/txn"
)

type cartRepo interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	BindUser(ctx context.Context, cartID, userID string) error
	ClearItems(ctx context.Context, tx txn.Tx, cartID string) error
}

type orderRepo interface {
	Create(ctx context.Context, tx txn.Tx, o *domain.Order) (*domain.Order, error)
	AddItem(ctx context.Context, tx txn.Tx, item domain.OrderItem) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdateFulfillment(ctx context.Context, id string, status domain.FulfillmentStatus) error
}

type inventoryRepo interface {
	GetForUpdate(ctx context.Context, tx txn.Tx, productID string) (*domain.Inventory, error)
	Save(ctx context.Context, tx txn.Tx, rec *domain.Inventory) error
}

type addressRepo interface {
	GetForUser(ctx context.Context, id, userID string) (*domain.Address, error)
}

// PricingPolicy computes tax and shipping for an order subtotal. The base
// deployment ships ZeroPricing; real rate tables plug in here.
type PricingPolicy interface {
	Price(subtotalCents int64) (taxCents, shippingFeeCents int64)
}

// ZeroPricing charges no tax and no shipping.
type ZeroPricing struct{}

func (ZeroPricing) Price(int64) (int64, int64) { return 0, 0 }

const (
	defaultCurrency       = "INR"
	defaultShippingMethod = "STANDARD"
	defaultPaymentMethod  = "COD"
)

// Service owns the checkout transaction and the order state machines.
type Service struct {
	begin     txn.Beginner
	carts     cartRepo
	orders    orderRepo
	inventory inventoryRepo
	addresses addressRepo
	pricing   PricingPolicy
	logger    *log.Logger
}

func New(begin txn.Beginner, carts cartRepo, orders orderRepo, inventory inventoryRepo, addresses addressRepo, pricing PricingPolicy, logger *log.Logger) *Service {
	if pricing == nil {
		pricing = ZeroPricing{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		begin:     begin,
		carts:     carts,
		orders:    orders,
		inventory: inventory,
		addresses: addresses,
		pricing:   pricing,
		logger:    logger,
	}
}

// CreateFromCart converts the user's cart into an order. Order row, item
// snapshots, inventory commits and the cart clear all happen in one
// transaction: either the whole checkout happened or none of it did.
func (s *Service) CreateFromCart(ctx context.Context, userID, sessionID, addressID, paymentMethod string) (*domain.Order, error) {
	cart, err := s.resolveCart(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	addr, err := s.addresses.GetForUser(ctx, addressID, userID)
	if err != nil {
		return nil, err
	}
	addrSnapshot, err := json.Marshal(addr)
	if err != nil {
		return nil, err
	}

	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	var subtotal int64
	for _, item := range cart.Items {
		subtotal += item.TotalCents()
	}
	tax, shipping := s.pricing.Price(subtotal)

	tx, err := s.begin.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := s.orders.Create(ctx, tx, &domain.Order{
		UserID:            userID,
		AddressID:         addressID,
		Status:            domain.OrderCreated,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
		SubtotalCents:     subtotal,
		TaxCents:          tax,
		ShippingFeeCents:  shipping,
		TotalCents:        subtotal + tax + shipping,
		Currency:          defaultCurrency,
		ShippingAddress:   addrSnapshot,
		PaymentMethod:     paymentMethod,
		ShippingMethod:    defaultShippingMethod,
	})
	if err != nil {
		return nil, err
	}

	// Lock rows in a deterministic order so two checkouts sharing products
	// cannot deadlock.
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	for _, item := range items {
		rec, err := s.inventory.GetForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			return nil, err
		}
		// Last line of defense before the irreversible deduction: the
		// reservation should guarantee this, but it is re-checked under the
		// row lock.
		if rec.TrackQuantity && rec.AvailableQuantity() < item.Quantity {
			return nil, &domain.OutOfStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: rec.AvailableQuantity(),
			}
		}
		rec.Commit(item.Quantity)
		if err := s.inventory.Save(ctx, tx, rec); err != nil {
			return nil, err
		}
		if err := s.orders.AddItem(ctx, tx, domain.OrderItem{
			OrderID:        created.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			TotalCents:     item.TotalCents(),
		}); err != nil {
			return nil, err
		}
	}

	if err := s.carts.ClearItems(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Printf("order: created %s for user %s (%d items, total %d)", created.ID, userID, len(items), created.TotalCents)
	return s.orders.GetByID(ctx, created.ID)
}

// resolveCart prefers the user's cart and falls back to an unbound session
// cart, binding it to the user first.
func (s *Service) resolveCart(ctx context.Context, userID, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if cart.IsEmpty() && sessionID != "" {
		sessionCart, err := s.carts.GetBySession(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if !sessionCart.IsEmpty() {
			if sessionCart.UserID == nil {
				if err := s.carts.BindUser(ctx, sessionCart.ID, userID); err != nil {
					return nil, err
				}
			}
			cart = sessionCart
		}
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	return cart, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	return s.orders.GetByIDForUser(ctx, id, userID)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error) {
	return s.orders.List(ctx, filter)
}

// UpdateStatus advances the payment state machine.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidState
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(status) {
		return nil, domain.ErrInvalidState
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

// UpdateFulfillment advances the shipping state machine; only paid orders
// move.
func (s *Service) UpdateFulfillment(ctx context.Context, id string, status domain.FulfillmentStatus) (*domain.Order, error) {
	if !domain.ValidFulfillmentStatus(status) {
		return nil, domain.ErrInvalidState
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderPaid {
		return nil, domain.ErrInvalidState
	}
	if !o.FulfillmentStatus.CanTransition(status) {
		return nil, domain.ErrInvalidState
	}
	if err := s.orders.UpdateFulfillment(ctx, id, status); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}
