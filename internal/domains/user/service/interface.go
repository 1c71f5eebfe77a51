package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// OpenLoanCounter reports how many non-returned loans a user currently holds.
// Implemented by the transaction repository; declared here so the user domain
// does not import it.
type OpenLoanCounter interface {
	CountOpenByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type ServiceInterface interface {
	// Registration and verification
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerificationEmail(ctx context.Context, req model.ResendVerificationRequest) error
	RequestPhoneOTP(ctx context.Context, req model.RequestOTPRequest) error
	VerifyPhoneOTP(ctx context.Context, req model.VerifyPhoneRequest) error

	// Sessions
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, req model.RefreshTokenRequest) (*model.LoginResponse, error)

	// Self service
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error

	// Admin
	ListUsers(ctx context.Context, req model.ListUsersRequest) ([]model.User, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req model.UpdateRoleRequest) error
	UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) error

	// Maintenance
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
