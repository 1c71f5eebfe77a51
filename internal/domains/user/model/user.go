package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ROLE CONSTANTS
// =====================================================
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// =====================================================
// ENTITY: User
// =====================================================
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // never expose in JSON
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`

	// Email verification
	EmailVerified       bool       `json:"email_verified"`
	EmailToken          *string    `json:"-"`
	EmailTokenExpiresAt *time.Time `json:"-"`

	// Phone verification (OTP)
	PhoneVerified     bool       `json:"phone_verified"`
	PhoneOTP          *string    `json:"-"`
	PhoneOTPExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsVerified reports whether the account can log in: at least one of the
// two contact channels must be confirmed.
func (u *User) IsVerified() bool {
	return u.EmailVerified || u.PhoneVerified
}
