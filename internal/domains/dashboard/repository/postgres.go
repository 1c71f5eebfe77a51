package repository

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/domains/dashboard/model"
	txmodel "library-backend/internal/domains/transaction/model"
	usermodel "library-backend/internal/domains/user/model"
	"library-backend/pkg/database"
)

// RepositoryInterface aggregates read-only statistics across the other
// domains' tables.
type RepositoryInterface interface {
	BookStats(ctx context.Context) (model.BookStats, error)
	MemberStats(ctx context.Context) (model.MemberStats, error)
	LoanStats(ctx context.Context, now time.Time) (model.LoanStats, error)
	FineStats(ctx context.Context) (model.FineStats, error)
	RecentActivity(ctx context.Context, limit int) ([]model.RecentActivity, error)
}

type postgresRepository struct {
	db database.DB
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db database.DB) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) BookStats(ctx context.Context) (model.BookStats, error) {
	var s model.BookStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_copies), 0),
		       COALESCE(SUM(total_copies - available_copies), 0),
		       COALESCE(SUM(available_copies), 0)
		FROM books
		WHERE is_active = TRUE
	`).Scan(&s.TotalTitles, &s.TotalCopies, &s.CopiesOut, &s.CopiesOnHand)
	if err != nil {
		return s, fmt.Errorf("book stats: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) MemberStats(ctx context.Context) (model.MemberStats, error) {
	var s model.MemberStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE email_verified OR phone_verified)
		FROM users
		WHERE role = $1
	`, usermodel.RoleMember).Scan(&s.Total, &s.Active, &s.Verified)
	if err != nil {
		return s, fmt.Errorf("member stats: %w", err)
	}
	return s, nil
}

// LoanStats counts by effective status, so loans past due that the sweep
// has not visited yet already show as overdue.
func (r *postgresRepository) LoanStats(ctx context.Context, now time.Time) (model.LoanStats, error) {
	var s model.LoanStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status IN ($2, $3) AND due_date >= $1),
		       COUNT(*) FILTER (WHERE status = $4 OR (status IN ($2, $3) AND due_date < $1)),
		       COUNT(*) FILTER (WHERE status = $5),
		       COUNT(*)
		FROM transactions
	`, now, txmodel.StatusActive, txmodel.StatusRenewed,
		txmodel.StatusOverdue, txmodel.StatusReturned).
		Scan(&s.Active, &s.Overdue, &s.Returned, &s.Total)
	if err != nil {
		return s, fmt.Errorf("loan stats: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) FineStats(ctx context.Context) (model.FineStats, error) {
	var s model.FineStats
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(fine_amount) FILTER (WHERE status <> $1), 0),
		       COALESCE(SUM(fine_amount) FILTER (WHERE status = $1), 0)
		FROM transactions
	`, txmodel.StatusReturned).Scan(&s.Assessed, &s.Collected)
	if err != nil {
		return s, fmt.Errorf("fine stats: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) RecentActivity(ctx context.Context, limit int) ([]model.RecentActivity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.type, t.status, b.title, u.full_name, t.updated_at
		FROM transactions t
		JOIN books b ON b.id = t.book_id
		JOIN users u ON u.id = t.user_id
		ORDER BY t.updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	var items []model.RecentActivity
	for rows.Next() {
		var it model.RecentActivity
		if err := rows.Scan(&it.TransactionID, &it.Type, &it.Status, &it.BookTitle, &it.UserFullName, &it.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
