package session

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `session_id, user_id::text, role, COALESCE(user_agent, ''), COALESCE(ip_address, ''), expires_at, last_accessed, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Session) (*domain.Session, error) {
	const q = `
INSERT INTO sessions (session_id, user_id, role, user_agent, ip_address, expires_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
RETURNING ` + sessionColumns + `
`
	out, err := scanSession(r.pool.QueryRow(ctx, q, s.SessionID, s.UserID, s.Role, s.UserAgent, s.IPAddress, s.ExpiresAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE session_id = $1
LIMIT 1
`
	return scanSession(r.pool.QueryRow(ctx, q, sessionID))
}

func (r *postgresRepo) Touch(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET last_accessed = now() WHERE session_id = $1`, sessionID)
	return err
}

func (r *postgresRepo) BindUser(ctx context.Context, sessionID, userID, role string) (*domain.Session, error) {
	const q = `
UPDATE sessions
SET user_id = $1,
    role = $2,
    expires_at = now() + interval '30 days',
    last_accessed = now()
WHERE session_id = $3
RETURNING ` + sessionColumns + `
`
	return scanSession(r.pool.QueryRow(ctx, q, userID, role, sessionID))
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	var userID *string
	err := row.Scan(
		&s.SessionID,
		&userID,
		&s.Role,
		&s.UserAgent,
		&s.IPAddress,
		&s.ExpiresAt,
		&s.LastAccessed,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.UserID = userID
	return &s, nil
}
