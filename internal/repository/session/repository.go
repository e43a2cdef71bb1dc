package session

import (
	"context"

	"storefront-api/internal/domain"
)

// Repository persists sessions keyed by their opaque session id.
type Repository interface {
	Create(ctx context.Context, s domain.Session) (*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Touch(ctx context.Context, sessionID string) error
	BindUser(ctx context.Context, sessionID, userID, role string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
