package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type stubSessions struct {
	sessions map[string]*domain.Session
}

func (s *stubSessions) GetOrCreate(_ context.Context, sessionID, _, _ string) (*domain.Session, error) {
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	sess := &domain.Session{SessionID: "sess_test", Role: domain.RoleGuest, ExpiresAt: time.Now().Add(time.Hour)}
	s.sessions[sess.SessionID] = sess
	return sess, nil
}

func (s *stubSessions) Login(_ context.Context, sessionID, phone, name string) (*domain.Session, *domain.User, error) {
	userID := "user-1"
	sess := &domain.Session{SessionID: sessionID, UserID: &userID, Role: domain.RoleCustomer, ExpiresAt: time.Now().Add(time.Hour)}
	s.sessions[sessionID] = sess
	return sess, &domain.User{ID: userID, Phone: phone, Name: name, Role: domain.RoleCustomer}, nil
}

func (s *stubSessions) Logout(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

func (s *stubSessions) User(_ context.Context, sess *domain.Session) (*domain.User, error) {
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotFound
	}
	return &domain.User{ID: *sess.UserID, Role: sess.Role}, nil
}

type stubCarts struct{}

func (stubCarts) GetOrCreate(_ context.Context, sessionID string) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1", SessionID: sessionID}, nil
}
func (stubCarts) AddItem(_ context.Context, sessionID, productID string, qty int) (*domain.Cart, error) {
	if productID == "gone" {
		return nil, domain.ErrNotFound
	}
	if productID == "scarce" {
		return nil, &domain.OutOfStockError{ProductID: productID, Requested: qty, Available: 1}
	}
	return &domain.Cart{ID: "cart-1", SessionID: sessionID, Items: []domain.CartItem{{ProductID: productID, Quantity: qty}}}, nil
}
func (stubCarts) UpdateItem(_ context.Context, sessionID, productID string, newQty int) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1", SessionID: sessionID}, nil
}
func (stubCarts) RemoveItem(_ context.Context, sessionID, _ string) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1", SessionID: sessionID}, nil
}
func (stubCarts) Clear(_ context.Context, sessionID string) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1", SessionID: sessionID}, nil
}
func (stubCarts) Refresh(_ context.Context, sessionID string) (*domain.Cart, error) {
	return &domain.Cart{ID: "cart-1", SessionID: sessionID}, nil
}

type stubOrders struct{}

func (stubOrders) CreateFromCart(_ context.Context, userID, _, _, _ string) (*domain.Order, error) {
	return &domain.Order{ID: "order-1", UserID: userID, Status: domain.OrderCreated}, nil
}
func (stubOrders) GetForUser(_ context.Context, id, userID string) (*domain.Order, error) {
	return &domain.Order{ID: id, UserID: userID}, nil
}
func (stubOrders) ListForUser(context.Context, string) ([]domain.Order, error) { return nil, nil }
func (stubOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	return &domain.Order{ID: id}, nil
}
func (stubOrders) List(context.Context, orderrepo.ListFilter) ([]domain.Order, int, error) {
	return nil, 0, nil
}
func (stubOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return &domain.Order{ID: id, Status: status}, nil
}
func (stubOrders) UpdateFulfillment(_ context.Context, id string, status domain.FulfillmentStatus) (*domain.Order, error) {
	return &domain.Order{ID: id, FulfillmentStatus: status}, nil
}

type stubProducts struct{}

func (stubProducts) List(context.Context, bool) ([]domain.Product, error) { return nil, nil }
func (stubProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id, Name: "Tea", IsActive: true}, nil
}
func (stubProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = "p-new"
	return &p, nil
}
func (stubProducts) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

type stubAddresses struct{}

func (stubAddresses) Create(_ context.Context, a domain.Address) (*domain.Address, error) {
	a.ID = "addr-1"
	return &a, nil
}
func (stubAddresses) Get(_ context.Context, id, userID string) (*domain.Address, error) {
	return &domain.Address{ID: id, UserID: userID}, nil
}
func (stubAddresses) List(context.Context, string) ([]domain.Address, error) { return nil, nil }
func (stubAddresses) Delete(context.Context, string, string) error           { return nil }

type stubInventory struct{}

func (stubInventory) Get(_ context.Context, productID string) (*domain.Inventory, error) {
	return &domain.Inventory{ProductID: productID, Quantity: 5, TrackQuantity: true}, nil
}
func (stubInventory) List(context.Context) ([]domain.Inventory, error) { return nil, nil }
func (stubInventory) SetQuantity(_ context.Context, productID string, qty int) (*domain.Inventory, error) {
	return &domain.Inventory{ProductID: productID, Quantity: qty, TrackQuantity: true}, nil
}
func (stubInventory) Restock(_ context.Context, productID string, qty int) (*domain.Inventory, error) {
	return &domain.Inventory{ProductID: productID, Quantity: qty, TrackQuantity: true}, nil
}

func testRouter(sessions *stubSessions) http.Handler {
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, Deps{
		Sessions:  sessions,
		Carts:     stubCarts{},
		Orders:    stubOrders{},
		Products:  stubProducts{},
		Addresses: stubAddresses{},
		Inventory: stubInventory{},
	}, nil)
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[string]*domain.Session)}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(newStubSessions())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCartEndpoint_SetsSessionCookie(t *testing.T) {
	router := testRouter(newStubSessions())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cart", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "sessionId=sess_test") {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
}

func TestAddCartItem_OutOfStockIs409(t *testing.T) {
	router := testRouter(newStubSessions())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"productId":"scarce","quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"available":1`) {
		t.Fatalf("expected available quantity in body, got %s", rec.Body.String())
	}
}

func TestAddCartItem_UnknownProductIs404(t *testing.T) {
	router := testRouter(newStubSessions())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"productId":"gone"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCheckout_RequiresAuth(t *testing.T) {
	router := testRouter(newStubSessions())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(`{"addressId":"addr-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCheckout_SucceedsWhenLoggedIn(t *testing.T) {
	sessions := newStubSessions()
	userID := "user-1"
	sessions.sessions["sess_auth"] = &domain.Session{
		SessionID: "sess_auth",
		UserID:    &userID,
		Role:      domain.RoleCustomer,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	router := testRouter(sessions)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(`{"addressId":"addr-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess_auth"})
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("expected success body, got %s", rec.Body.String())
	}
}

func TestSetStock_AcceptsZero(t *testing.T) {
	sessions := newStubSessions()
	userID := "admin-1"
	sessions.sessions["sess_admin"] = &domain.Session{
		SessionID: "sess_admin",
		UserID:    &userID,
		Role:      domain.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	router := testRouter(sessions)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/inventory/p1", strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess_admin"})
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for zero stock, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"quantity":0`) {
		t.Fatalf("expected quantity 0 in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/inventory/p1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess_admin"})
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quantity, got %d", rec.Code)
	}
}

func TestAdminRoutes_RejectCustomers(t *testing.T) {
	sessions := newStubSessions()
	userID := "user-1"
	sessions.sessions["sess_auth"] = &domain.Session{
		SessionID: "sess_auth",
		UserID:    &userID,
		Role:      domain.RoleCustomer,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	router := testRouter(sessions)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/inventory", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess_auth"})
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
