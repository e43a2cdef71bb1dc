package session

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"storefront-api/internal/domain"
)

const (
	guestTTL = 7 * 24 * time.Hour
)

type sessionRepo interface {
	Create(ctx context.Context, s domain.Session) (*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Touch(ctx context.Context, sessionID string) error
	BindUser(ctx context.Context, sessionID, userID, role string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

type cartMerger interface {
	MergeIntoUser(ctx context.Context, sessionID, userID string) (*domain.Cart, error)
}

// Service issues guest sessions and binds them to users at login.
type Service struct {
	sessions sessionRepo
	users    userRepo
	carts    cartMerger
	logger   *log.Logger
}

func New(sessions sessionRepo, users userRepo, carts cartMerger, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{sessions: sessions, users: users, carts: carts, logger: logger}
}

// GetOrCreate resolves the cookie's session, replacing missing or expired
// ones with a fresh guest session.
func (s *Service) GetOrCreate(ctx context.Context, sessionID, userAgent, ipAddress string) (*domain.Session, error) {
	if sessionID != "" {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err == nil && !sess.IsExpired() {
			if err := s.sessions.Touch(ctx, sessionID); err != nil {
				return nil, err
			}
			return sess, nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return s.sessions.Create(ctx, domain.Session{
		SessionID: "sess_" + uuid.NewString(),
		Role:      domain.RoleGuest,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(guestTTL),
	})
}

// Login finds or registers the user by phone, binds the session to them and
// folds the guest cart into the user's cart.
func (s *Service) Login(ctx context.Context, sessionID, phone, name string) (*domain.Session, *domain.User, error) {
	u, err := s.users.GetByPhone(ctx, phone)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.users.Create(ctx, domain.User{Phone: phone, Name: name, Role: domain.RoleCustomer})
	}
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.BindUser(ctx, sessionID, u.ID, u.Role)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.carts.MergeIntoUser(ctx, sessionID, u.ID); err != nil {
		return nil, nil, err
	}

	s.logger.Printf("session: user %s logged in on session %s", u.ID, sessionID)
	return sess, u, nil
}

// Logout deletes the session; the cookie is invalidated by the handler.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Delete(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// User resolves the session's bound user.
func (s *Service) User(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotFound
	}
	return s.users.GetByID(ctx, *sess.UserID)
}

// DeleteExpired purges expired session rows. The cart sweeper must run first
// so reservations held by those sessions' carts are returned.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
