package user

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (phone, name, role)
VALUES ($1, NULLIF($2, ''), $3)
RETURNING id::text, phone, COALESCE(name, ''), role, created_at
`
	return scanUser(r.pool.QueryRow(ctx, q, u.Phone, u.Name, u.Role))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT id::text, phone, COALESCE(name, ''), role, created_at
FROM users
WHERE id = $1
LIMIT 1
`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	const q = `
SELECT id::text, phone, COALESCE(name, ''), role, created_at
FROM users
WHERE phone = $1
LIMIT 1
`
	return scanUser(r.pool.QueryRow(ctx, q, phone))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Phone, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}
