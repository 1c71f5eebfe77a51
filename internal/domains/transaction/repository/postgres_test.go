package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/transaction/model"
)

var repoStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

var txRowColumns = []string{
	"id", "user_id", "book_id", "processed_by", "type", "status",
	"borrow_date", "due_date", "return_date", "fine_amount", "renewal_count",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, RepositoryInterface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepository(mock)
}

func sampleLoan() *model.Transaction {
	return &model.Transaction{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		BookID:      uuid.New(),
		ProcessedBy: uuid.New(),
		Type:        model.TypeBorrow,
		Status:      model.StatusActive,
		BorrowDate:  repoStart,
		DueDate:     repoStart.AddDate(0, 0, 14),
		FineAmount:  decimal.Zero,
		CreatedAt:   repoStart,
		UpdatedAt:   repoStart,
	}
}

// =====================================================
// ISSUE
// =====================================================

func TestIssueBorrow_DecrementsAndInsertsInOneTx(t *testing.T) {
	mock, repo := newMockRepo(t)
	loan := sampleLoan()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(loan.BookID, loan.BorrowDate).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			loan.ID, loan.UserID, loan.BookID, loan.ProcessedBy, loan.Type, loan.Status,
			loan.BorrowDate, loan.DueDate, loan.FineAmount, loan.RenewalCount,
			loan.CreatedAt, loan.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.IssueBorrow(context.Background(), loan))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueBorrow_LastCopyGuardRollsBackWithoutInsert(t *testing.T) {
	mock, repo := newMockRepo(t)
	loan := sampleLoan()

	// available_copies > 0 matched nothing: the whole transaction unwinds
	// and no loan row is ever written.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(loan.BookID, loan.BorrowDate).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.IssueBorrow(context.Background(), loan)
	assert.ErrorIs(t, err, model.ErrBookUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// =====================================================
// RETURN
// =====================================================

func TestReturnBorrow_ClosesLoanAndRestoresCopy(t *testing.T) {
	mock, repo := newMockRepo(t)
	loan := sampleLoan()
	returnedAt := repoStart.AddDate(0, 0, 7)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(loan.ID, model.StatusReturned, model.TypeReturn, returnedAt, decimal.Zero).
		WillReturnRows(pgxmock.NewRows(txRowColumns).AddRow(
			loan.ID, loan.UserID, loan.BookID, loan.ProcessedBy,
			model.TypeReturn, model.StatusReturned,
			loan.BorrowDate, loan.DueDate, &returnedAt, decimal.Zero, 0,
			loan.CreatedAt, returnedAt,
		))
	mock.ExpectExec("UPDATE books").
		WithArgs(loan.BookID, returnedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	closed, err := repo.ReturnBorrow(context.Background(), loan.ID, returnedAt, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, model.StatusReturned, closed.Status)
	require.NotNil(t, closed.ReturnDate)
	assert.Equal(t, returnedAt, *closed.ReturnDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnBorrow_DoubleReturnLosesCleanly(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	returnedAt := repoStart.AddDate(0, 0, 7)

	// The status <> returned guard matched nothing; the follow-up read
	// classifies the conflict instead of touching the copy counter.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(id, model.StatusReturned, model.TypeReturn, returnedAt, decimal.Zero).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM transactions").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(model.StatusReturned))
	mock.ExpectRollback()

	_, err := repo.ReturnBorrow(context.Background(), id, returnedAt, decimal.Zero)
	assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnBorrow_UnknownLoan(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(id, model.StatusReturned, model.TypeReturn, repoStart, decimal.Zero).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM transactions").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ReturnBorrow(context.Background(), id, repoStart, decimal.Zero)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// =====================================================
// RENEW
// =====================================================

func TestRenewBorrow_GuardFailureClassifiedAsRenewalLimit(t *testing.T) {
	mock, repo := newMockRepo(t)
	loan := sampleLoan()
	loan.RenewalCount = 2
	now := repoStart.AddDate(0, 0, 3)

	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(loan.ID, 14, 2, now, model.StatusRenewed, model.TypeRenewal, model.StatusActive).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM transactions t WHERE t.id").
		WithArgs(loan.ID).
		WillReturnRows(pgxmock.NewRows(txRowColumns).AddRow(
			loan.ID, loan.UserID, loan.BookID, loan.ProcessedBy,
			loan.Type, loan.Status,
			loan.BorrowDate, loan.DueDate, nil, loan.FineAmount, loan.RenewalCount,
			loan.CreatedAt, loan.UpdatedAt,
		))

	_, err := repo.RenewBorrow(context.Background(), loan.ID, 14, 2, now)
	assert.ErrorIs(t, err, model.ErrRenewalLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewBorrow_GuardFailureOnPastDueLoan(t *testing.T) {
	mock, repo := newMockRepo(t)
	loan := sampleLoan()
	now := loan.DueDate.AddDate(0, 0, 2)

	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(loan.ID, 14, 2, now, model.StatusRenewed, model.TypeRenewal, model.StatusActive).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM transactions t WHERE t.id").
		WithArgs(loan.ID).
		WillReturnRows(pgxmock.NewRows(txRowColumns).AddRow(
			loan.ID, loan.UserID, loan.BookID, loan.ProcessedBy,
			loan.Type, model.StatusActive,
			loan.BorrowDate, loan.DueDate, nil, loan.FineAmount, 0,
			loan.CreatedAt, loan.UpdatedAt,
		))

	_, err := repo.RenewBorrow(context.Background(), loan.ID, 14, 2, now)
	assert.ErrorIs(t, err, model.ErrRenewWhileOverdue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// =====================================================
// SWEEP
// =====================================================

func TestMarkOverdue_StampsAndReturnsNotificationRows(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := repoStart.AddDate(0, 0, 20)
	dueDate := repoStart.AddDate(0, 0, 14)

	cols := []string{"id", "email", "full_name", "phone", "phone_verified", "title", "due_date", "fine_amount"}
	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(now, 1, model.StatusOverdue, model.StatusActive, model.StatusRenewed).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			uuid.New().String(), "reader@example.com", "A Reader", "+385911234567", true,
			"The Go Programming Language", dueDate, decimal.NewFromInt(6),
		))

	items, err := repo.MarkOverdue(context.Background(), now, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "reader@example.com", items[0].UserEmail)
	assert.Equal(t, "+385911234567", items[0].UserPhone)
	assert.True(t, items[0].PhoneVerified)
	assert.True(t, items[0].FineAmount.Equal(decimal.NewFromInt(6)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOverdue_SecondRunMatchesNothing(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := repoStart.AddDate(0, 0, 20)

	cols := []string{"id", "email", "full_name", "phone", "phone_verified", "title", "due_date", "fine_amount"}
	mock.ExpectQuery("UPDATE transactions t").
		WithArgs(now, 1, model.StatusOverdue, model.StatusActive, model.StatusRenewed).
		WillReturnRows(pgxmock.NewRows(cols))

	items, err := repo.MarkOverdue(context.Background(), now, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
