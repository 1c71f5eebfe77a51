package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/transaction/model"
)

// RepositoryInterface is the loan data access contract. The mutating
// operations are atomic: each one runs the loan row change and the matching
// inventory counter change inside a single database transaction, guarded by
// conditional UPDATEs, so concurrent callers can never oversell copies or
// double-close a loan.
type RepositoryInterface interface {
	// IssueBorrow decrements the book's available copies (guarded > 0),
	// bumps its borrow stats and inserts the loan row, all in one database
	// transaction. Returns ErrBookUnavailable when the guard fails.
	IssueBorrow(ctx context.Context, tx *model.Transaction) error

	// ReturnBorrow closes the loan: sets return date, finalized fine and
	// terminal status, and gives the copy back (capped at total_copies).
	// The loan update is conditional on a non-terminal status; a racing
	// double return gets ErrAlreadyReturned.
	ReturnBorrow(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*model.Transaction, error)

	// RenewBorrow extends the loan by periodDays and bumps the renewal
	// count, conditional on a non-overdue open status, the renewal limit
	// and the due date still being in the future.
	RenewBorrow(ctx context.Context, id uuid.UUID, periodDays, maxRenewals int, now time.Time) (*model.Transaction, error)

	// MarkOverdue promotes every open loan past its due date to overdue and
	// stamps the recomputed fine. Returns the newly-overdue loans joined
	// with borrower contact data for notification fan-out. Idempotent.
	MarkOverdue(ctx context.Context, now time.Time, finePerDay int) ([]model.OverdueItem, error)

	// Reads
	GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, req model.ListTransactionsRequest) ([]model.Transaction, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int, error)

	// Borrower guards
	CountOpenByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountOverdueByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	// Reminder feeds
	FindDueSoon(ctx context.Context, from, to time.Time, limit int) ([]model.DueSoonItem, error)
	FindOverdue(ctx context.Context, now time.Time, finePerDay, limit int) ([]model.OverdueItem, error)
}
