package cart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"storefront-api/internal/domain"
	"storefront-api/internal/migrate"
	productrepo "storefront-api/internal/repository/product"
	sessionrepo "storefront-api/internal/repository/session"
	userrepo "storefront-api/internal/repository/user"
)

// The sweep must only pick up guest carts. A user's cart has to survive its
// session being deleted at logout so the next login can merge into it.
func TestListExpired_SweepsOnlyGuestCarts(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, pool.Ping(ctx))

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, carts, addresses, inventory, products, sessions, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	carts := NewPostgres(pool)
	products := productrepo.NewPostgres(pool, nil)
	sessions := sessionrepo.NewPostgres(pool)
	users := userrepo.NewPostgres(pool)

	product, err := products.Create(ctx, domain.Product{Name: "Sweep Tea", PriceCents: 10000, IsActive: true})
	require.NoError(t, err)

	// Guest cart whose session expired.
	_, err = sessions.Create(ctx, domain.Session{SessionID: "sess_dead", Role: domain.RoleGuest, ExpiresAt: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	deadCart, err := carts.Create(ctx, "sess_dead", nil)
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(ctx, deadCart.ID, *product, 2))

	// Guest cart whose session is still live.
	_, err = sessions.Create(ctx, domain.Session{SessionID: "sess_live", Role: domain.RoleGuest, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = carts.Create(ctx, "sess_live", nil)
	require.NoError(t, err)

	// User cart with no session row, as after logout.
	user, err := users.Create(ctx, domain.User{Phone: "+911234509876", Name: "Sweep User", Role: domain.RoleCustomer})
	require.NoError(t, err)
	userCart, err := carts.Create(ctx, "sess_gone", &user.ID)
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(ctx, userCart.ID, *product, 1))

	expired, err := carts.ListExpired(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, deadCart.ID, expired[0].ID)
	require.Len(t, expired[0].Items, 1)
	require.Equal(t, 2, expired[0].Items[0].Quantity)
}
