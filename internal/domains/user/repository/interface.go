package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
)

// RepositoryInterface is the user account data access contract.
type RepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	List(ctx context.Context, req model.ListUsersRequest) ([]model.User, int, error)

	Update(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// Verification state transitions
	SetEmailToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	FindByEmailToken(ctx context.Context, token string) (*model.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetPhoneOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error
	MarkPhoneVerified(ctx context.Context, id uuid.UUID) error

	// PurgeExpiredTokens clears expired email tokens and phone OTPs.
	// Returns the number of rows touched.
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
