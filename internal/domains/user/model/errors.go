package model

import "errors"

// Repository-level errors
var (
	// Not Found
	ErrUserNotFound = errors.New("user not found")

	// Conflict
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPhoneAlreadyExists = errors.New("phone number already exists")

	// Invalid state
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidOTP      = errors.New("invalid or expired verification code")
	ErrUserInactive    = errors.New("user account is inactive")
	ErrAlreadyVerified = errors.New("email is already verified")
)

// Service-level errors
var (
	// Authentication
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotVerified    = errors.New("account not verified: confirm your email or phone first")

	// Password
	ErrSamePassword = errors.New("new password cannot be same as current password")

	// Rate limiting
	ErrTooManyOTPRequests = errors.New("too many verification code requests, please try again later")

	// Lifecycle
	ErrUserHasOpenLoans = errors.New("account has open loans and cannot be deactivated")

	// Authorization
	ErrInvalidRole = errors.New("invalid user role")
)
