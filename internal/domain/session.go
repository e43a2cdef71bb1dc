package domain

import "time"

// Session scopes an anonymous or authenticated shopping cart. The cart and
// checkout code treat SessionID as an opaque key carried in a cookie.
type Session struct {
	SessionID    string    `json:"sessionId"`
	UserID       *string   `json:"userId,omitempty"`
	Role         string    `json:"role"`
	UserAgent    string    `json:"-"`
	IPAddress    string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastAccessed time.Time `json:"lastAccessed"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAuthenticated reports whether the session is bound to a user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}
