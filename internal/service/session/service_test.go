package session

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"storefront-api/internal/domain"
)

type memorySessions struct {
	byID map[string]domain.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{byID: make(map[string]domain.Session)}
}

func (r *memorySessions) Create(_ context.Context, s domain.Session) (*domain.Session, error) {
	if _, exists := r.byID[s.SessionID]; exists {
		return nil, domain.ErrAlreadyExists
	}
	s.CreatedAt = time.Now()
	s.LastAccessed = s.CreatedAt
	if s.Role == "" {
		s.Role = domain.RoleGuest
	}
	r.byID[s.SessionID] = s
	clone := s
	return &clone, nil
}

func (r *memorySessions) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s, ok := r.byID[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := s
	return &clone, nil
}

func (r *memorySessions) Touch(_ context.Context, sessionID string) error {
	if s, ok := r.byID[sessionID]; ok {
		s.LastAccessed = time.Now()
		r.byID[sessionID] = s
	}
	return nil
}

func (r *memorySessions) BindUser(_ context.Context, sessionID, userID, role string) (*domain.Session, error) {
	s, ok := r.byID[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.UserID = &userID
	s.Role = role
	s.ExpiresAt = time.Now().Add(30 * 24 * time.Hour)
	r.byID[sessionID] = s
	clone := s
	return &clone, nil
}

func (r *memorySessions) Delete(_ context.Context, sessionID string) error {
	if _, ok := r.byID[sessionID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, sessionID)
	return nil
}

func (r *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range r.byID {
		if s.IsExpired() {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

type memoryUsers struct {
	seq     int
	byPhone map[string]domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byPhone: make(map[string]domain.User)}
}

func (r *memoryUsers) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, exists := r.byPhone[u.Phone]; exists {
		return nil, domain.ErrAlreadyExists
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	r.byPhone[u.Phone] = u
	clone := u
	return &clone, nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byPhone {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryUsers) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	u, ok := r.byPhone[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := u
	return &clone, nil
}

type mergeRecorder struct {
	calls [][2]string
}

func (m *mergeRecorder) MergeIntoUser(_ context.Context, sessionID, userID string) (*domain.Cart, error) {
	m.calls = append(m.calls, [2]string{sessionID, userID})
	return &domain.Cart{ID: "cart-1", SessionID: sessionID, UserID: &userID}, nil
}

func TestGetOrCreate_MintsGuestSession(t *testing.T) {
	svc := New(newMemorySessions(), newMemoryUsers(), &mergeRecorder{}, nil)
	ctx := context.Background()

	sess, err := svc.GetOrCreate(ctx, "", "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !strings.HasPrefix(sess.SessionID, "sess_") {
		t.Fatalf("expected sess_ prefix, got %q", sess.SessionID)
	}
	if sess.Role != domain.RoleGuest || sess.IsAuthenticated() {
		t.Fatalf("expected unauthenticated guest, got %+v", sess)
	}
	if until := time.Until(sess.ExpiresAt); until < 6*24*time.Hour || until > 8*24*time.Hour {
		t.Fatalf("expected roughly 7 day expiry, got %v", until)
	}
}

func TestGetOrCreate_ReusesLiveSession(t *testing.T) {
	svc := New(newMemorySessions(), newMemoryUsers(), &mergeRecorder{}, nil)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "", "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.GetOrCreate(ctx, first.SessionID, "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("reuse: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("expected same session, got %q and %q", first.SessionID, second.SessionID)
	}
}

func TestGetOrCreate_ReplacesExpiredSession(t *testing.T) {
	repo := newMemorySessions()
	svc := New(repo, newMemoryUsers(), &mergeRecorder{}, nil)
	ctx := context.Background()

	stale := domain.Session{SessionID: "sess_stale", Role: domain.RoleGuest, ExpiresAt: time.Now().Add(-time.Hour)}
	if _, err := repo.Create(ctx, stale); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sess, err := svc.GetOrCreate(ctx, "sess_stale", "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if sess.SessionID == "sess_stale" {
		t.Fatal("expected a fresh session for an expired cookie")
	}
}

func TestLogin_RegistersBindsAndMerges(t *testing.T) {
	users := newMemoryUsers()
	merger := &mergeRecorder{}
	svc := New(newMemorySessions(), users, merger, nil)
	ctx := context.Background()

	guest, err := svc.GetOrCreate(ctx, "", "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("guest: %v", err)
	}

	sess, user, err := svc.Login(ctx, guest.SessionID, "+911234567890", "A Buyer")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected CUSTOMER role, got %s", user.Role)
	}
	if !sess.IsAuthenticated() || *sess.UserID != user.ID {
		t.Fatalf("expected session bound to %s, got %+v", user.ID, sess)
	}
	if len(merger.calls) != 1 || merger.calls[0] != [2]string{guest.SessionID, user.ID} {
		t.Fatalf("expected one cart merge for the login, got %v", merger.calls)
	}

	// Logging in again with the same phone must reuse the account.
	guest2, _ := svc.GetOrCreate(ctx, "", "agent", "127.0.0.1")
	_, again, err := svc.Login(ctx, guest2.SessionID, "+911234567890", "")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same user, got %s and %s", user.ID, again.ID)
	}
}

func TestLogout_IsIdempotent(t *testing.T) {
	svc := New(newMemorySessions(), newMemoryUsers(), &mergeRecorder{}, nil)
	ctx := context.Background()

	sess, err := svc.GetOrCreate(ctx, "", "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Logout(ctx, sess.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(ctx, sess.SessionID); err != nil {
		t.Fatalf("second logout must be a no-op, got %v", err)
	}
}
