package product

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, name, COALESCE(description, ''), price_cents, COALESCE(image_url, ''), COALESCE(category, ''), is_active, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
`
	if !includeInactive {
		q += "WHERE is_active\n"
	}
	q += "ORDER BY created_at DESC\n"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.Category, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.Category, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price_cents, image_url, category, is_active)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
RETURNING id::text, created_at
`
	out := p
	if err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category, p.IsActive).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("product repo: create name=%q error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", out.ID, out.Name)
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $1,
    description = NULLIF($2, ''),
    price_cents = $3,
    image_url = NULLIF($4, ''),
    category = NULLIF($5, ''),
    is_active = $6
WHERE id = $7
RETURNING created_at
`
	out := p
	err := r.pool.QueryRow(ctx, q, p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category, p.IsActive, p.ID).Scan(&out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
