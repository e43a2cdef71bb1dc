package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
	ordersvc "storefront-api/internal/service/order"
)

// Deps carries the services the router depends on.
type Deps struct {
	Sessions  SessionService
	Carts     CartService
	Orders    OrderService
	Products  ProductService
	Addresses AddressService
	Inventory InventoryService
}

type SessionService interface {
	GetOrCreate(ctx context.Context, sessionID, userAgent, ipAddress string) (*domain.Session, error)
	Login(ctx context.Context, sessionID, phone, name string) (*domain.Session, *domain.User, error)
	Logout(ctx context.Context, sessionID string) error
	User(ctx context.Context, sess *domain.Session) (*domain.User, error)
}

type CartService interface {
	GetOrCreate(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string, qty int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sessionID, productID string, newQty int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) (*domain.Cart, error)
	Refresh(ctx context.Context, sessionID string) (*domain.Cart, error)
}

type OrderService interface {
	CreateFromCart(ctx context.Context, userID, sessionID, addressID, paymentMethod string) (*domain.Order, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	UpdateFulfillment(ctx context.Context, id string, status domain.FulfillmentStatus) (*domain.Order, error)
}

type ProductService interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type AddressService interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	Get(ctx context.Context, id, userID string) (*domain.Address, error)
	List(ctx context.Context, userID string) ([]domain.Address, error)
	Delete(ctx context.Context, id, userID string) error
}

type InventoryService interface {
	Get(ctx context.Context, productID string) (*domain.Inventory, error)
	List(ctx context.Context) ([]domain.Inventory, error)
	SetQuantity(ctx context.Context, productID string, qty int) (*domain.Inventory, error)
	Restock(ctx context.Context, productID string, qty int) (*domain.Inventory, error)
}

var _ OrderService = (*ordersvc.Service)(nil)

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	db         *pgxpool.Pool
}

// New builds a Server with all API routes wired.
func New(addr string, logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*Server, error) {
	router := buildRouter(logger, db, deps, corsOrigins)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		db:         db,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
