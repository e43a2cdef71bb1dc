package domain

import "time"

const (
	RoleGuest    = "guest"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the authenticated principal. Credential verification (OTP
// delivery and validation) happens in a collaborating auth service; this
// service only consumes the resulting identity and role.
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may call admin operations.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
