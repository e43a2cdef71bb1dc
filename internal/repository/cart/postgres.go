package cart

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cartColumns = `id::text, session_id, user_id::text, total_cents, total_items, last_updated, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, sessionID string, userID *string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (session_id, user_id, total_cents, total_items)
VALUES ($1, $2, 0, 0)
RETURNING ` + cartColumns + `
`
	cart, err := scanCart(r.pool.QueryRow(ctx, q, sessionID, userID))
	if err != nil {
		return nil, err
	}
	cart.Items = []domain.CartItem{}
	return cart, nil
}

func (r *postgresRepo) GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE session_id = $1
`
	return r.fetchCart(ctx, q, sessionID)
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1
ORDER BY last_updated DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, userID)
}

func (r *postgresRepo) BindUser(ctx context.Context, cartID, userID string) error {
	const q = `
UPDATE carts
SET user_id = $1,
    last_updated = now()
WHERE id = $2
`
	cmd, err := r.pool.Exec(ctx, q, userID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, cartID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertItem merges quantity into an existing line (refreshing its price
// snapshot) or inserts a new one, then recomputes the aggregates.
func (r *postgresRepo) UpsertItem(ctx context.Context, cartID string, product domain.Product, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_cents, product_name, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (cart_id, product_id) DO UPDATE SET
    quantity = cart_items.quantity + EXCLUDED.quantity,
    unit_price_cents = EXCLUDED.unit_price_cents,
    product_name = EXCLUDED.product_name,
    image_url = EXCLUDED.image_url,
    updated_at = now()
`
	if _, err := tx.Exec(ctx, q, cartID, product.ID, quantity, product.PriceCents, product.Name, product.ImageURL); err != nil {
		return err
	}
	if err := recalcTotals(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetItemQuantity replaces a line's quantity and refreshes its price
// snapshot; quantity <= 0 removes the line.
func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, productID string, quantity int, unitPriceCents int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $1, unit_price_cents = $2, updated_at = now()
WHERE cart_id = $3 AND product_id = $4
`, quantity, unitPriceCents, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := recalcTotals(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, productID string) error {
	return r.SetItemQuantity(ctx, cartID, productID, 0, 0)
}

func (r *postgresRepo) ClearItems(ctx context.Context, tx txn.Tx, cartID string) error {
	pgTx := txn.Unwrap(tx)
	if _, err := pgTx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	return recalcTotals(ctx, pgTx, cartID)
}

// Merge folds the guest cart's lines into the user cart in one transaction:
// shared products sum quantities at the current catalog price, the rest move
// across, and the guest cart row is deleted. Reservations are keyed by
// product, not cart, so no inventory change is needed.
func (r *postgresRepo) Merge(ctx context.Context, guestCartID, userCartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
UPDATE cart_items u
SET quantity = u.quantity + g.quantity,
    unit_price_cents = p.price_cents,
    updated_at = now()
FROM cart_items g
JOIN products p ON p.id = g.product_id
WHERE u.cart_id = $1
  AND g.cart_id = $2
  AND u.product_id = g.product_id
`, userCartID, guestCartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE cart_items g
SET cart_id = $1,
    unit_price_cents = p.price_cents,
    updated_at = now()
FROM products p
WHERE g.cart_id = $2
  AND p.id = g.product_id
  AND NOT EXISTS (
      SELECT 1 FROM cart_items u
      WHERE u.cart_id = $1 AND u.product_id = g.product_id
  )
`, userCartID, guestCartID); err != nil {
		return err
	}

	// Whatever is left on the guest cart was summed into the user cart.
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, guestCartID); err != nil {
		return err
	}

	if err := recalcTotals(ctx, tx, userCartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListExpired returns guest carts whose owning session is gone or past
// expiry, items included so the caller can release their reservations.
// Carts bound to a user outlive their session: logout deletes the session
// row immediately, and the cart must still be there for the next login's
// merge.
func (r *postgresRepo) ListExpired(ctx context.Context) ([]domain.Cart, error) {
	const q = `
SELECT c.id::text, c.session_id, c.user_id::text, c.total_cents, c.total_items, c.last_updated, c.created_at
FROM carts c
LEFT JOIN sessions s ON s.session_id = c.session_id
WHERE c.user_id IS NULL AND (s.session_id IS NULL OR s.expires_at < now())
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, *cart)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for idx := range carts {
		items, err := r.fetchItems(ctx, carts[idx].ID)
		if err != nil {
			return nil, err
		}
		carts[idx].Items = items
	}
	return carts, nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, query string, args ...interface{}) (*domain.Cart, error) {
	cart, err := scanCart(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	cart.Items, err = r.fetchItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	const q = `
SELECT id::text, cart_id::text, product_id::text, quantity, unit_price_cents, product_name, COALESCE(image_url, ''), added_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY added_at ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.ProductName,
			&item.ImageURL,
			&item.AddedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func recalcTotals(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_cents = COALESCE((
        SELECT SUM(quantity * unit_price_cents)
        FROM cart_items
        WHERE cart_id = $1
    ), 0),
    total_items = COALESCE((
        SELECT SUM(quantity)
        FROM cart_items
        WHERE cart_id = $1
    ), 0),
    last_updated = now()
WHERE id = $1
`, cartID)
	return err
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	var userID *string
	if err := row.Scan(
		&cart.ID,
		&cart.SessionID,
		&userID,
		&cart.TotalCents,
		&cart.TotalItems,
		&cart.LastUpdated,
		&cart.CreatedAt,
	); err != nil {
		return nil, err
	}
	cart.UserID = userID
	return &cart, nil
}
