package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/config"
	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/cache"
	"library-backend/pkg/clock"
	"library-backend/pkg/jwt"
)

const (
	bcryptCost = 12

	emailTokenBytes  = 32
	emailTokenExpiry = 24 * time.Hour

	otpDigits       = 6
	otpExpiry       = 10 * time.Minute
	otpRateLimit    = 3 // requests per window
	otpRateWindow   = time.Hour
	otpRateLimitKey = "otp:rate:"
)

// Notifier enqueues verification messages. Implemented by the queue client;
// delivery failures never fail the operation that triggered them.
type Notifier interface {
	EnqueueVerificationEmail(ctx context.Context, email, token string)
	EnqueuePhoneOTP(ctx context.Context, phone, code string)
}

type userService struct {
	repo       repository.RepositoryInterface
	loanCounts OpenLoanCounter
	queue      Notifier
	cache      cache.Cache
	jwtManager *jwt.Manager
	jwtCfg     config.JWTConfig
	clock      clock.Clock
}

func NewService(
	repo repository.RepositoryInterface,
	loanCounts OpenLoanCounter,
	queueClient Notifier,
	cacheClient cache.Cache,
	jwtManager *jwt.Manager,
	jwtCfg config.JWTConfig,
	clk clock.Clock,
) ServiceInterface {
	return &userService{
		repo:       repo,
		loanCounts: loanCounts,
		queue:      queueClient,
		cache:      cacheClient,
		jwtManager: jwtManager,
		jwtCfg:     jwtCfg,
		clock:      clk,
	}
}

// =====================================================
// REGISTRATION & VERIFICATION
// =====================================================

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := utils.GenerateSecureToken(emailTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate email token: %w", err)
	}

	now := s.clock.Now()
	tokenExpiry := now.Add(emailTokenExpiry)

	user := &model.User{
		ID:                  uuid.New(),
		FullName:            req.FullName,
		Email:               req.Email,
		Phone:               req.Phone,
		PasswordHash:        string(hash),
		Role:                model.RoleMember,
		IsActive:            true,
		EmailToken:          &token,
		EmailTokenExpiresAt: &tokenExpiry,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Fire-and-forget: a dropped email must not fail registration.
	s.queue.EnqueueVerificationEmail(ctx, user.Email, token)

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("[UserService] user registered")

	return user, nil
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return model.ErrInvalidToken
	}

	user, err := s.repo.FindByEmailToken(ctx, token)
	if err != nil {
		return err
	}

	return s.repo.MarkEmailVerified(ctx, user.ID)
}

// ResendVerificationEmail rotates the email token and re-sends the link.
// The old token stops working the moment the new one is stored.
func (s *userService) ResendVerificationEmail(ctx context.Context, req model.ResendVerificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return model.ErrAlreadyVerified
	}
	if !user.IsActive {
		return model.ErrUserInactive
	}

	token, err := utils.GenerateSecureToken(emailTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate email token: %w", err)
	}

	if err := s.repo.SetEmailToken(ctx, user.ID, token, s.clock.Now().Add(emailTokenExpiry)); err != nil {
		return err
	}

	s.queue.EnqueueVerificationEmail(ctx, user.Email, token)
	return nil
}

func (s *userService) RequestPhoneOTP(ctx context.Context, req model.RequestOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return model.ErrUserInactive
	}

	// Rate limit OTP requests per phone to stop SMS abuse.
	rateKey := otpRateLimitKey + req.Phone
	count, err := s.cache.Increment(ctx, rateKey)
	if err != nil {
		log.Warn().Err(err).Msg("[UserService] OTP rate-limit check failed, allowing request")
	} else {
		if count == 1 {
			if err := s.cache.Expire(ctx, rateKey, otpRateWindow); err != nil {
				log.Warn().Err(err).Msg("[UserService] failed to set OTP rate-limit TTL")
			}
		}
		if count > otpRateLimit {
			return model.ErrTooManyOTPRequests
		}
	}

	code, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	expiresAt := s.clock.Now().Add(otpExpiry)
	if err := s.repo.SetPhoneOTP(ctx, user.ID, code, expiresAt); err != nil {
		return err
	}

	s.queue.EnqueuePhoneOTP(ctx, user.Phone, code)
	return nil
}

func (s *userService) VerifyPhoneOTP(ctx context.Context, req model.VerifyPhoneRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return err
	}

	if user.PhoneOTP == nil || user.PhoneOTPExpiresAt == nil {
		return model.ErrInvalidOTP
	}
	if s.clock.Now().After(*user.PhoneOTPExpiresAt) {
		return model.ErrInvalidOTP
	}
	if *user.PhoneOTP != req.Code {
		return model.ErrInvalidOTP
	}

	return s.repo.MarkPhoneVerified(ctx, user.ID)
}

// =====================================================
// SESSIONS
// =====================================================

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Same error for unknown email and bad password.
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, model.ErrUserInactive
	}
	if !user.IsVerified() {
		return nil, model.ErrUserNotVerified
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.clock.Now()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("[UserService] failed to record last login")
	}

	return resp, nil
}

func (s *userService) RefreshToken(ctx context.Context, req model.RefreshTokenRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, model.ErrUserInactive
	}

	return s.issueTokens(user)
}

func (s *userService) issueTokens(user *model.User) (*model.LoginResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.clock.Now().Add(s.jwtCfg.AccessExpiry()),
		User:         *user,
	}, nil
}

// =====================================================
// SELF SERVICE
// =====================================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return model.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, user)
}

// =====================================================
// ADMIN
// =====================================================

func (s *userService) ListUsers(ctx context.Context, req model.ListUsersRequest) ([]model.User, int, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Role != "" && !model.IsValidRole(req.Role) {
		return nil, 0, model.ErrInvalidRole
	}
	return s.repo.List(ctx, req)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, req model.UpdateRoleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateRole(ctx, id, req.Role)
}

// UpdateStatus activates or deactivates an account. Deactivation is refused
// while the user still holds open loans so inventory stays reconcilable.
func (s *userService) UpdateStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) error {
	if !req.IsActive {
		open, err := s.loanCounts.CountOpenByUser(ctx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return model.ErrUserHasOpenLoans
		}
	}
	return s.repo.UpdateStatus(ctx, id, req.IsActive)
}

// =====================================================
// MAINTENANCE
// =====================================================

func (s *userService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpiredTokens(ctx, s.clock.Now())
}
