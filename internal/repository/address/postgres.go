package address

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addressColumns = `id::text, user_id::text, full_name, COALESCE(phone, ''), line1, COALESCE(line2, ''), city, COALESCE(state, ''), postal_code, country, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	const q = `
INSERT INTO addresses (user_id, full_name, phone, line1, line2, city, state, postal_code, country)
VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, $9)
RETURNING ` + addressColumns + `
`
	return scanAddress(r.pool.QueryRow(ctx, q, a.UserID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country))
}

func (r *postgresRepo) GetForUser(ctx context.Context, id, userID string) (*domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE id = $1 AND user_id = $2
`
	return scanAddress(r.pool.QueryRow(ctx, q, id, userID))
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Delete(ctx context.Context, id, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.FullName,
		&a.Phone,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
