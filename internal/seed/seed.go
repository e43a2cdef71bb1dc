package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	ImageURL    string
	Stock       int
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "+910000000001", "Store Admin"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	products := []productSeed{
		{
			Name:        "Masala Chai Blend",
			Description: "Loose-leaf assam tea with cardamom and ginger, 250g",
			PriceCents:  34900,
			Category:    "grocery",
			Stock:       120,
		},
		{
			Name:        "Steel Water Bottle 1L",
			Description: "Insulated stainless steel bottle, keeps drinks cold for 24h",
			PriceCents:  89900,
			Category:    "kitchen",
			Stock:       45,
		},
		{
			Name:        "Cotton Canvas Tote",
			Description: "Heavy-duty natural canvas shopping bag",
			PriceCents:  24900,
			Category:    "accessories",
			Stock:       8,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, phone, name string) error {
	const q = `
INSERT INTO users (phone, name, role)
VALUES ($1, $2, 'admin')
ON CONFLICT (phone) DO UPDATE SET role = 'admin'
`
	_, err := pool.Exec(ctx, q, phone, name)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE name = $1 LIMIT 1`, p.Name).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		const insertProduct = `
INSERT INTO products (name, description, price_cents, category, image_url, is_active)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), true)
RETURNING id::text
`
		if err := pool.QueryRow(ctx, insertProduct, p.Name, p.Description, p.PriceCents, p.Category, p.ImageURL).Scan(&id); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	const upsertStock = `
INSERT INTO inventory (product_id, quantity, reserved_quantity)
VALUES ($1, $2, 0)
ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
`
	_, err = pool.Exec(ctx, upsertStock, id, p.Stock)
	return err
}
