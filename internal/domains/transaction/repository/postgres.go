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
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/transaction/model"
	"library-backend/pkg/database"
)

type postgresRepository struct {
	db database.DB
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db database.DB) RepositoryInterface {
	return &postgresRepository{db: db}
}

const txColumns = `
	t.id, t.user_id, t.book_id, t.processed_by, t.type, t.status,
	t.borrow_date, t.due_date, t.return_date, t.fine_amount, t.renewal_count,
	t.created_at, t.updated_at
`

// fineExpr computes the accrued fine in SQL: full late days rounded up,
// times the daily rate, never below the fine already on the row.
const fineExpr = `GREATEST(
	fine_amount,
	(CEIL(EXTRACT(EPOCH FROM ($1::timestamptz - due_date)) / 86400.0))::bigint * $2
)`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.BookID, &t.ProcessedBy, &t.Type, &t.Status,
		&t.BorrowDate, &t.DueDate, &t.ReturnDate, &t.FineAmount, &t.RenewalCount,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}

// =====================================================
// MUTATIONS (atomic, guarded)
// =====================================================

// IssueBorrow takes one copy and records the loan in a single database
// transaction. The available_copies > 0 guard is what makes concurrent
// issues safe: whichever UPDATE lands second on the last copy matches zero
// rows and the whole transaction rolls back.
func (r *postgresRepository) IssueBorrow(ctx context.Context, t *model.Transaction) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE books
			SET available_copies = available_copies - 1,
			    borrow_count = borrow_count + 1,
			    last_borrowed_at = $2,
			    updated_at = $2
			WHERE id = $1 AND is_active = TRUE AND available_copies > 0
		`, t.BookID, t.BorrowDate)
		if err != nil {
			return fmt.Errorf("decrement available copies: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrBookUnavailable
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (
				id, user_id, book_id, processed_by, type, status,
				borrow_date, due_date, fine_amount, renewal_count,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			t.ID, t.UserID, t.BookID, t.ProcessedBy, t.Type, t.Status,
			t.BorrowDate, t.DueDate, t.FineAmount, t.RenewalCount,
			t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
				return model.ErrTransactionNotFound
			}
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
}

// ReturnBorrow closes the loan and gives the copy back. The status guard
// makes a double return lose cleanly instead of incrementing the counter
// twice; LEAST caps the counter at total_copies.
func (r *postgresRepository) ReturnBorrow(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*model.Transaction, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Transaction, error) {
		row := tx.QueryRow(ctx, `
			UPDATE transactions t
			SET status = $2, type = $3, return_date = $4,
			    fine_amount = GREATEST(fine_amount, $5),
			    updated_at = $4
			WHERE t.id = $1 AND t.status <> $2
			RETURNING `+txColumns,
			id, model.StatusReturned, model.TypeReturn, returnedAt, fine)

		closed, err := scanTransaction(row)
		if err != nil {
			if errors.Is(err, model.ErrTransactionNotFound) {
				return nil, r.classifyMissingUpdate(ctx, tx, id)
			}
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			UPDATE books
			SET available_copies = LEAST(available_copies + 1, total_copies),
			    updated_at = $2
			WHERE id = $1
		`, closed.BookID, returnedAt)
		if err != nil {
			return nil, fmt.Errorf("restore available copy: %w", err)
		}

		return closed, nil
	})
}

// RenewBorrow extends the due date in one conditional UPDATE. The guards
// encode the whole eligibility rule, so a loan that went past due between
// the service check and this statement still cannot slip through.
func (r *postgresRepository) RenewBorrow(ctx context.Context, id uuid.UUID, periodDays, maxRenewals int, now time.Time) (*model.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE transactions t
		SET renewal_count = renewal_count + 1,
		    due_date = due_date + make_interval(days => $2),
		    status = $5, type = $6, updated_at = $4
		WHERE t.id = $1
		  AND t.status IN ($5, $7)
		  AND t.renewal_count < $3
		  AND t.due_date >= $4
		RETURNING `+txColumns,
		id, periodDays, maxRenewals, now,
		model.StatusRenewed, model.TypeRenewal, model.StatusActive)

	renewed, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, model.ErrTransactionNotFound) {
			return nil, r.classifyFailedRenewal(ctx, id, maxRenewals, now)
		}
		return nil, err
	}
	return renewed, nil
}

// MarkOverdue is the sweep: one conditional UPDATE promotes every open loan
// past its due date and stamps the accrued fine. Running it twice without
// the clock moving matches zero rows the second time.
func (r *postgresRepository) MarkOverdue(ctx context.Context, now time.Time, finePerDay int) ([]model.OverdueItem, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE transactions t
		SET status = $3,
		    fine_amount = `+fineExpr+`,
		    updated_at = $1
		FROM users u, books b
		WHERE t.status IN ($4, $5)
		  AND t.due_date < $1
		  AND u.id = t.user_id
		  AND b.id = t.book_id
		RETURNING t.id, u.email, u.full_name, u.phone, u.phone_verified, b.title, t.due_date, t.fine_amount
	`, now, finePerDay, model.StatusOverdue, model.StatusActive, model.StatusRenewed)
	if err != nil {
		return nil, fmt.Errorf("sweep overdue: %w", err)
	}
	defer rows.Close()

	return collectOverdueItems(rows)
}

// classifyMissingUpdate maps a zero-row return update to the precise error.
func (r *postgresRepository) classifyMissingUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrTransactionNotFound
		}
		return fmt.Errorf("classify return conflict: %w", err)
	}
	if status == model.StatusReturned {
		return model.ErrAlreadyReturned
	}
	return model.ErrTransactionNotFound
}

// classifyFailedRenewal re-reads the row to say exactly why the guarded
// renewal matched nothing.
func (r *postgresRepository) classifyFailedRenewal(ctx context.Context, id uuid.UUID, maxRenewals int, now time.Time) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case t.Status == model.StatusReturned:
		return model.ErrAlreadyReturned
	case t.EffectiveStatus(now) == model.StatusOverdue:
		return model.ErrRenewWhileOverdue
	case t.RenewalCount >= maxRenewals:
		return model.ErrRenewalLimit
	default:
		return model.ErrNotRenewable
	}
}

// =====================================================
// READS
// =====================================================

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions t WHERE t.id = $1`
	return scanTransaction(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) List(ctx context.Context, req model.ListTransactionsRequest) ([]model.Transaction, int, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if req.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("t.user_id = $%d", argPos))
		args = append(args, req.UserID)
		argPos++
	}
	if req.BookID != "" {
		conditions = append(conditions, fmt.Sprintf("t.book_id = $%d", argPos))
		args = append(args, req.BookID)
		argPos++
	}
	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argPos))
		args = append(args, req.Status)
		argPos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions t "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, b.title, b.isbn, u.full_name
		FROM transactions t
		JOIN books b ON b.id = t.book_id
		JOIN users u ON u.id = t.user_id
		%s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, txColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := collectJoinedTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int, error) {
	return r.List(ctx, model.ListTransactionsRequest{
		UserID: userID.String(),
		Page:   page,
		Limit:  limit,
	})
}

func collectJoinedTransactions(rows pgx.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.BookID, &t.ProcessedBy, &t.Type, &t.Status,
			&t.BorrowDate, &t.DueDate, &t.ReturnDate, &t.FineAmount, &t.RenewalCount,
			&t.CreatedAt, &t.UpdatedAt,
			&t.BookTitle, &t.BookISBN, &t.UserFullName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// =====================================================
// BORROWER GUARDS
// =====================================================

func (r *postgresRepository) CountOpenByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND status <> $2
	`, userID, model.StatusReturned).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open transactions: %w", err)
	}
	return count, nil
}

// CountOverdueByUser counts by effective status: loans the sweep has not
// visited yet still block new borrows once past due.
func (r *postgresRepository) CountOverdueByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1
		  AND (status = $2 OR (status IN ($3, $4) AND due_date < $5))
	`, userID, model.StatusOverdue, model.StatusActive, model.StatusRenewed, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count overdue transactions: %w", err)
	}
	return count, nil
}

// =====================================================
// REMINDER FEEDS
// =====================================================

func (r *postgresRepository) FindDueSoon(ctx context.Context, from, to time.Time, limit int) ([]model.DueSoonItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, u.email, u.full_name, b.title, t.due_date
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		JOIN books b ON b.id = t.book_id
		WHERE t.status IN ($1, $2)
		  AND t.due_date >= $3 AND t.due_date < $4
		ORDER BY t.due_date
		LIMIT $5
	`, model.StatusActive, model.StatusRenewed, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("find due soon: %w", err)
	}
	defer rows.Close()

	var items []model.DueSoonItem
	for rows.Next() {
		var it model.DueSoonItem
		if err := rows.Scan(&it.TransactionID, &it.UserEmail, &it.UserFullName, &it.BookTitle, &it.DueDate); err != nil {
			return nil, fmt.Errorf("scan due-soon row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// FindOverdue lists standing overdue loans with the fine recomputed as of
// now. Fines on the rows themselves stay as last stamped; the row value is
// only finalized at return.
func (r *postgresRepository) FindOverdue(ctx context.Context, now time.Time, finePerDay, limit int) ([]model.OverdueItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, u.email, u.full_name, u.phone, u.phone_verified, b.title, t.due_date, `+fineExpr+`
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		JOIN books b ON b.id = t.book_id
		WHERE (t.status = $3 OR (t.status IN ($4, $5) AND t.due_date < $1))
		ORDER BY t.due_date
		LIMIT $6
	`, now, finePerDay, model.StatusOverdue, model.StatusActive, model.StatusRenewed, limit)
	if err != nil {
		return nil, fmt.Errorf("find overdue: %w", err)
	}
	defer rows.Close()

	return collectOverdueItems(rows)
}

func collectOverdueItems(rows pgx.Rows) ([]model.OverdueItem, error) {
	var items []model.OverdueItem
	for rows.Next() {
		var it model.OverdueItem
		if err := rows.Scan(&it.TransactionID, &it.UserEmail, &it.UserFullName, &it.UserPhone, &it.PhoneVerified,
			&it.BookTitle, &it.DueDate, &it.FineAmount); err != nil {
			return nil, fmt.Errorf("scan overdue row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
