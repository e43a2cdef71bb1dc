package order

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"storefront-api/internal/domain"
	"storefront-api/internal/migrate"
	addressrepo "storefront-api/internal/repository/address"
	cartrepo "storefront-api/internal/repository/cart"
	inventoryrepo "storefront-api/internal/repository/inventory"
	orderpg "storefront-api/internal/repository/order"
	productrepo "storefront-api/internal/repository/product"
	"storefront-api/internal/repository/txn"
	userrepo "storefront-api/internal/repository/user"
	cartsvc "storefront-api/internal/service/cart"
	inventorysvc "storefront-api/internal/service/inventory"
)

// Exercises the full checkout path against postgres: reservation, commit,
// snapshot and cart clear in one transaction.
func TestCheckout_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	resetTables(ctx, t, pool)

	products := productrepo.NewPostgres(pool, nil)
	inventory := inventoryrepo.NewPostgres(pool, nil)
	carts := cartrepo.NewPostgres(pool)
	orders := orderpg.NewPostgres(pool)
	users := userrepo.NewPostgres(pool)
	addresses := addressrepo.NewPostgres(pool)
	beginner := txn.NewPostgresBeginner(pool, 10*time.Second)

	ledger := inventorysvc.New(inventory, nil)
	cartService := cartsvc.New(carts, products, ledger, nil)
	svc := New(beginner, carts, orders, inventory, addresses, nil, nil)

	user, err := users.Create(ctx, domain.User{Phone: "+911112223334", Name: "Int User", Role: domain.RoleCustomer})
	require.NoError(t, err)

	addr, err := addresses.Create(ctx, domain.Address{
		UserID: user.ID, FullName: "Int User", Line1: "1 Main St",
		City: "Pune", PostalCode: "411001", Country: "IN",
	})
	require.NoError(t, err)

	product, err := products.Create(ctx, domain.Product{Name: "Int Tea", PriceCents: 34900, IsActive: true})
	require.NoError(t, err)
	_, err = inventory.Create(ctx, product.ID, 10)
	require.NoError(t, err)

	const sessionID = "sess_integration"
	_, err = cartService.AddItem(ctx, sessionID, product.ID, 3)
	require.NoError(t, err)

	rec, err := ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 3, rec.ReservedQuantity)

	order, err := svc.CreateFromCart(ctx, user.ID, sessionID, addr.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.OrderCreated, order.Status)
	require.Equal(t, int64(3*34900), order.TotalCents)
	require.Len(t, order.Items, 1)

	rec, err = ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 7, rec.Quantity)
	require.Equal(t, 0, rec.ReservedQuantity)

	cart, err := cartService.GetOrCreate(ctx, sessionID)
	require.NoError(t, err)
	require.True(t, cart.IsEmpty())
}

func integrationPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, carts, addresses, inventory, products, sessions, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
