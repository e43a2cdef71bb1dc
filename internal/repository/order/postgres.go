package order

import (
	"context"
	"errors"
	"fmt"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, user_id::text, address_id::text, status, fulfillment_status, subtotal_cents, tax_cents, shipping_fee_cents, total_cents, currency, shipping_address, payment_method, shipping_method, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, tx txn.Tx, o *domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (user_id, address_id, status, fulfillment_status, subtotal_cents, tax_cents, shipping_fee_cents, total_cents, currency, shipping_address, payment_method, shipping_method)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id::text, created_at
`
	out := *o
	err := txn.Unwrap(tx).QueryRow(ctx, q,
		o.UserID,
		o.AddressID,
		o.Status,
		o.FulfillmentStatus,
		o.SubtotalCents,
		o.TaxCents,
		o.ShippingFeeCents,
		o.TotalCents,
		o.Currency,
		o.ShippingAddress,
		o.PaymentMethod,
		o.ShippingMethod,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, tx txn.Tx, item domain.OrderItem) error {
	const q = `
INSERT INTO order_items (order_id, product_id, product_name, unit_price_cents, quantity, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := txn.Unwrap(tx).Exec(ctx, q,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.UnitPriceCents,
		item.Quantity,
		item.TotalCents,
	)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	return r.fetchOrder(ctx, q, id)
}

func (r *postgresRepo) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND user_id = $2
`
	return r.fetchOrder(ctx, q, id, userID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	orders, err := r.fetchOrders(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE true`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE true` + where + `
ORDER BY created_at DESC
`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf("LIMIT $%d\n", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		q += fmt.Sprintf("OFFSET $%d\n", len(args))
	}

	orders, err := r.fetchOrders(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateFulfillment(ctx context.Context, id string, status domain.FulfillmentStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET fulfillment_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchOrder(ctx context.Context, query string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Items, err = r.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) fetchOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for idx := range orders {
		items, err := r.fetchItems(ctx, orders[idx].ID)
		if err != nil {
			return nil, err
		}
		orders[idx].Items = items
	}
	return orders, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `
SELECT id::text, order_id::text, product_id::text, product_name, unit_price_cents, quantity, total_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_id ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPriceCents,
			&item.Quantity,
			&item.TotalCents,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.AddressID,
		&o.Status,
		&o.FulfillmentStatus,
		&o.SubtotalCents,
		&o.TaxCents,
		&o.ShippingFeeCents,
		&o.TotalCents,
		&o.Currency,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.ShippingMethod,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
