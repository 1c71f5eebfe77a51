package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"library-backend/internal/domains/user/model"
	"library-backend/pkg/database"
)

type postgresRepository struct {
	db database.DB
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db database.DB) RepositoryInterface {
	return &postgresRepository{db: db}
}

const userColumns = `
	id, full_name, email, phone, password_hash, role, is_active,
	email_verified, email_token, email_token_expires_at,
	phone_verified, phone_otp, phone_otp_expires_at,
	last_login_at, created_at, updated_at
`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.EmailVerified, &u.EmailToken, &u.EmailTokenExpiresAt,
		&u.PhoneVerified, &u.PhoneOTP, &u.PhoneOTPExpiresAt,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, full_name, email, phone, password_hash, role, is_active,
			email_verified, email_token, email_token_expires_at,
			phone_verified, phone_otp, phone_otp_expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.FullName, user.Email, user.Phone, user.PasswordHash,
		user.Role, user.IsActive,
		user.EmailVerified, user.EmailToken, user.EmailTokenExpiresAt,
		user.PhoneVerified, user.PhoneOTP, user.PhoneOTPExpiresAt,
		user.CreatedAt, user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			if strings.Contains(pgErr.ConstraintName, "phone") {
				return model.ErrPhoneAlreadyExists
			}
			return model.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *postgresRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return scanUser(r.db.QueryRow(ctx, query, phone))
}

func (r *postgresRepository) List(ctx context.Context, req model.ListUsersRequest) ([]model.User, int, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)",
			argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argPos))
		args = append(args, req.Role)
		argPos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			full_name = $2, password_hash = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, user.ID, user.FullName, user.PasswordHash, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, isActive)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *postgresRepository) SetEmailToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email_token = $2, email_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, token, expiresAt)
	if err != nil {
		return fmt.Errorf("set email token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) FindByEmailToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email_token = $1 AND email_token_expires_at > NOW()`

	u, err := scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email_verified = TRUE, email_token = NULL,
		    email_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) SetPhoneOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET phone_otp = $2, phone_otp_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, otp, expiresAt)
	if err != nil {
		return fmt.Errorf("set phone otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET phone_verified = TRUE, phone_otp = NULL,
		    phone_otp_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark phone verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// PurgeExpiredTokens clears verification material that outlived its window.
func (r *postgresRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email_token = CASE WHEN email_token_expires_at <= $1 THEN NULL ELSE email_token END,
		    email_token_expires_at = CASE WHEN email_token_expires_at <= $1 THEN NULL ELSE email_token_expires_at END,
		    phone_otp = CASE WHEN phone_otp_expires_at <= $1 THEN NULL ELSE phone_otp END,
		    phone_otp_expires_at = CASE WHEN phone_otp_expires_at <= $1 THEN NULL ELSE phone_otp_expires_at END
		WHERE email_token_expires_at <= $1 OR phone_otp_expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
