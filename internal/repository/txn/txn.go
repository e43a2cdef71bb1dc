package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is the transaction handle passed through repository methods so the
// atomicity boundary of multi-entity operations is visible in their
// signatures instead of hidden inside each repository.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner starts transactions. *pgxpool.Pool is wrapped by PostgresBeginner;
// tests substitute in-memory implementations.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// PostgresTx wraps a pgx transaction. Repositories unwrap it with Unwrap to
// run statements on the shared transaction.
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PostgresTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// Unwrap returns the underlying pgx transaction. It panics when tx did not
// come from a PostgresBeginner, which indicates mismatched wiring rather
// than a runtime condition.
func Unwrap(tx Tx) pgx.Tx {
	return tx.(*PostgresTx).tx
}

// PostgresBeginner starts pgx transactions with a bounded lifetime so a
// stalled client cannot hold row locks indefinitely.
type PostgresBeginner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresBeginner wraps a pool. timeout <= 0 disables the statement
// deadline.
func NewPostgresBeginner(pool *pgxpool.Pool, timeout time.Duration) *PostgresBeginner {
	return &PostgresBeginner{pool: pool, timeout: timeout}
}

func (b *PostgresBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	if b.timeout > 0 {
		// SET does not take bind parameters; transaction-local, resets on
		// commit/rollback.
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", b.timeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
	}
	return &PostgresTx{tx: tx}, nil
}
