package inventory

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/txn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invColumns = `id::text, product_id::text, quantity, reserved_quantity, low_stock_threshold, track_quantity, created_at, updated_at`

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

func (r *postgresRepo) Get(ctx context.Context, productID string) (*domain.Inventory, error) {
	const q = `
SELECT ` + invColumns + `
FROM inventory
WHERE product_id = $1
`
	rec, err := scanInventory(r.pool.QueryRow(ctx, q, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Inventory, error) {
	const q = `
SELECT ` + invColumns + `
FROM inventory
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Inventory
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, productID string, quantity int) (*domain.Inventory, error) {
	const q = `
INSERT INTO inventory (product_id, quantity, reserved_quantity)
VALUES ($1, $2, 0)
RETURNING ` + invColumns + `
`
	rec, err := scanInventory(r.pool.QueryRow(ctx, q, productID, quantity))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	r.logger.Printf("inventory repo: created record product_id=%s quantity=%d", productID, quantity)
	return rec, nil
}

// Mutate locks the product's row, applies fn to the re-read state and writes
// the result back, all in one transaction. fn returning an error aborts with
// no mutation.
func (r *postgresRepo) Mutate(ctx context.Context, productID string, fn func(*domain.Inventory) error) (*domain.Inventory, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rec, err := lockRow(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := writeRow(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, tx txn.Tx, productID string) (*domain.Inventory, error) {
	return lockRow(ctx, txn.Unwrap(tx), productID)
}

func (r *postgresRepo) Save(ctx context.Context, tx txn.Tx, rec *domain.Inventory) error {
	return writeRow(ctx, txn.Unwrap(tx), rec)
}

func lockRow(ctx context.Context, tx pgx.Tx, productID string) (*domain.Inventory, error) {
	const q = `
SELECT ` + invColumns + `
FROM inventory
WHERE product_id = $1
FOR UPDATE
`
	rec, err := scanInventory(tx.QueryRow(ctx, q, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func writeRow(ctx context.Context, tx pgx.Tx, rec *domain.Inventory) error {
	const q = `
UPDATE inventory
SET quantity = $1,
    reserved_quantity = $2,
    low_stock_threshold = $3,
    track_quantity = $4,
    updated_at = now()
WHERE product_id = $5
`
	cmd, err := tx.Exec(ctx, q, rec.Quantity, rec.ReservedQuantity, rec.LowStockThreshold, rec.TrackQuantity, rec.ProductID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInventory(row pgx.Row) (*domain.Inventory, error) {
	var rec domain.Inventory
	if err := row.Scan(
		&rec.ID,
		&rec.ProductID,
		&rec.Quantity,
		&rec.ReservedQuantity,
		&rec.LowStockThreshold,
		&rec.TrackQuantity,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
