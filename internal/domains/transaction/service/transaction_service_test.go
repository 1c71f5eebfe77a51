package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/transaction/model"
	usermodel "library-backend/internal/domains/user/model"
	"library-backend/pkg/clock"
)

var testStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testPolicy() LoanPolicy {
	return LoanPolicy{
		BorrowPeriodDays: 14,
		MaxRenewals:      3,
		BorrowCap:        5,
		FinePerDay:       1,
		DueSoonWindow:    48 * time.Hour,
	}
}

type fixture struct {
	repo     *MockTransactionRepo
	books    *MockBookRepo
	users    *MockUserRepo
	notifier *MockNotifier
	cache    *spyCache
	clock    *clock.FixedClock
	service  ServiceInterface
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockTransactionRepo),
		books:    new(MockBookRepo),
		users:    new(MockUserRepo),
		notifier: new(MockNotifier),
		cache:    new(spyCache),
		clock:    clock.Fixed(testStart),
	}
	f.service = NewService(f.repo, f.books, f.users, f.notifier, f.cache, testPolicy(), f.clock)
	return f
}

func activeBook() *bookmodel.Book {
	return &bookmodel.Book{
		ID:              uuid.New(),
		Title:           "The Go Programming Language",
		TotalCopies:     3,
		AvailableCopies: 2,
		IsActive:        true,
	}
}

func verifiedMember() *usermodel.User {
	return &usermodel.User{
		ID:            uuid.New(),
		FullName:      "Ana Petrov",
		Email:         "ana@example.com",
		Role:          usermodel.RoleMember,
		IsActive:      true,
		EmailVerified: true,
	}
}

func issueReq(book *bookmodel.Book, user *usermodel.User) model.IssueRequest {
	return model.IssueRequest{
		BookID: book.ID.String(),
		UserID: user.ID.String(),
	}
}

// =====================================================
// ISSUE
// =====================================================

func TestIssue_Success(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	staff := uuid.New()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(0, nil)
	f.repo.On("CountOpenByUser", mock.Anything, user.ID).Return(2, nil)
	f.repo.On("IssueBorrow", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	tx, err := f.service.Issue(context.Background(), issueReq(book, user), staff)
	require.NoError(t, err)

	assert.Equal(t, model.StatusActive, tx.Status)
	assert.Equal(t, model.TypeBorrow, tx.Type)
	assert.Equal(t, staff, tx.ProcessedBy)
	assert.Equal(t, testStart.AddDate(0, 0, 14), tx.DueDate)
	assert.True(t, tx.FineAmount.IsZero())
	assert.Zero(t, tx.RenewalCount)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestIssue_RequestedDueDateOverridesDefault(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	requested := testStart.AddDate(0, 0, 7)

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(0, nil)
	f.repo.On("CountOpenByUser", mock.Anything, user.ID).Return(0, nil)
	f.repo.On("IssueBorrow", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	req := issueReq(book, user)
	req.DueDate = &requested

	tx, err := f.service.Issue(context.Background(), req, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, requested, tx.DueDate)
}

func TestIssue_BookNotFound(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(nil, bookmodel.ErrBookNotFound)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)
	f.repo.AssertNotCalled(t, "IssueBorrow", mock.Anything, mock.Anything)
}

func TestIssue_InactiveBook(t *testing.T) {
	f := newFixture()
	book := activeBook()
	book.IsActive = false
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, bookmodel.ErrBookInactive)
}

func TestIssue_InactiveBorrower(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	user.IsActive = false

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, usermodel.ErrUserInactive)
}

func TestIssue_UnverifiedBorrower(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	user.EmailVerified = false
	user.PhoneVerified = false

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, usermodel.ErrUserNotVerified)
}

func TestIssue_NoCopiesAvailable(t *testing.T) {
	f := newFixture()
	book := activeBook()
	book.AvailableCopies = 0
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookUnavailable)
	// Availability is checked before the borrower's record, so the overdue
	// count must not even be consulted.
	f.repo.AssertNotCalled(t, "CountOverdueByUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssue_BorrowerWithOverdueLoanBlocked(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(1, nil)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, model.ErrBorrowerOverdue)
	f.repo.AssertNotCalled(t, "IssueBorrow", mock.Anything, mock.Anything)
}

func TestIssue_BorrowCapReached(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(0, nil)
	f.repo.On("CountOpenByUser", mock.Anything, user.ID).Return(5, nil)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, model.ErrBorrowCapReached)
}

func TestIssue_RacingBorrowLosesOnGuard(t *testing.T) {
	// The advisory availability check passed, but another issue took the
	// last copy before our database transaction ran.
	f := newFixture()
	book := activeBook()
	book.AvailableCopies = 1
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(0, nil)
	f.repo.On("CountOpenByUser", mock.Anything, user.ID).Return(0, nil)
	f.repo.On("IssueBorrow", mock.Anything, mock.Anything).Return(model.ErrBookUnavailable)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookUnavailable)
	f.notifier.AssertNotCalled(t, "EnqueueLoanNotice", mock.Anything, mock.Anything)
}

// =====================================================
// RETURN
// =====================================================

func openLoan(user *usermodel.User, book *bookmodel.Book, due time.Time) *model.Transaction {
	return &model.Transaction{
		ID:         uuid.New(),
		UserID:     user.ID,
		BookID:     book.ID,
		Type:       model.TypeBorrow,
		Status:     model.StatusActive,
		BorrowDate: testStart,
		DueDate:    due,
		FineAmount: decimal.Zero,
	}
}

func TestReturn_OnTimeHasNoFine(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	closed := *loan
	closed.Status = model.StatusReturned

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.repo.On("ReturnBorrow", mock.Anything, loan.ID, testStart, decimal.Zero).Return(&closed, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	result, err := f.service.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, result.FineCharged.IsZero())
	f.repo.AssertExpectations(t)
}

func TestReturn_FifteenDaysFinalizesOneDollarFine(t *testing.T) {
	// Borrowed for 14 days, returned on day 15: the finalized fine is $1.
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	f.clock.Set(testStart.AddDate(0, 0, 15))
	returnedAt := f.clock.Now()

	closed := *loan
	closed.Status = model.StatusReturned
	closed.ReturnDate = &returnedAt
	closed.FineAmount = decimal.NewFromInt(1)

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.repo.On("ReturnBorrow", mock.Anything, loan.ID, returnedAt,
		mock.MatchedBy(func(fine decimal.Decimal) bool {
			return fine.Equal(decimal.NewFromInt(1))
		})).Return(&closed, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	result, err := f.service.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, result.FineCharged.Equal(decimal.NewFromInt(1)))
}

func TestReturn_NeverLowersSweptFine(t *testing.T) {
	// The sweep already assessed $3; a return while the clock says $2 must
	// keep the higher amount.
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))
	loan.Status = model.StatusOverdue
	loan.FineAmount = decimal.NewFromInt(3)

	f.clock.Set(loan.DueDate.Add(30 * time.Hour)) // 2 late days by the clock

	closed := *loan
	closed.Status = model.StatusReturned

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.repo.On("ReturnBorrow", mock.Anything, loan.ID, f.clock.Now(),
		mock.MatchedBy(func(fine decimal.Decimal) bool {
			return fine.Equal(decimal.NewFromInt(3))
		})).Return(&closed, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	_, err := f.service.Return(context.Background(), loan.ID)
	require.NoError(t, err)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))
	loan.Status = model.StatusReturned

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	_, err := f.service.Return(context.Background(), loan.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	f.repo.AssertNotCalled(t, "ReturnBorrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReturn_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, model.ErrTransactionNotFound)

	_, err := f.service.Return(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

// =====================================================
// RENEW
// =====================================================

func TestRenew_Success(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	renewed := *loan
	renewed.Status = model.StatusRenewed
	renewed.Type = model.TypeRenewal
	renewed.RenewalCount = 1
	renewed.DueDate = loan.DueDate.AddDate(0, 0, 14)

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.repo.On("RenewBorrow", mock.Anything, loan.ID, 14, 3, testStart).Return(&renewed, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	got, err := f.service.Renew(context.Background(), loan.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RenewalCount)
	assert.Equal(t, loan.DueDate.AddDate(0, 0, 14), got.DueDate)
}

func TestRenew_PastDueRejectedBeforeSweep(t *testing.T) {
	// The row still says active, but the due date has passed: renewal must
	// fail, not silently transition the loan.
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	f.clock.Set(loan.DueDate.Add(time.Hour))
	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	_, err := f.service.Renew(context.Background(), loan.ID, user.ID, false)
	assert.ErrorIs(t, err, model.ErrRenewWhileOverdue)
	f.repo.AssertNotCalled(t, "RenewBorrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRenew_LimitReached(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))
	loan.Status = model.StatusRenewed
	loan.RenewalCount = 3

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	_, err := f.service.Renew(context.Background(), loan.ID, user.ID, false)
	assert.ErrorIs(t, err, model.ErrRenewalLimit)
}

func TestRenew_ReturnedLoan(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))
	loan.Status = model.StatusReturned

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	_, err := f.service.Renew(context.Background(), loan.ID, user.ID, false)
	assert.ErrorIs(t, err, model.ErrAlreadyReturned)
}

func TestRenew_OtherMembersLoanForbidden(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	_, err := f.service.Renew(context.Background(), loan.ID, uuid.New(), false)
	assert.ErrorIs(t, err, model.ErrNotTransactionOwner)
}

func TestRenew_AdminMayRenewAnyLoan(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	renewed := *loan
	renewed.Status = model.StatusRenewed
	renewed.RenewalCount = 1

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.repo.On("RenewBorrow", mock.Anything, loan.ID, 14, 3, testStart).Return(&renewed, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	_, err := f.service.Renew(context.Background(), loan.ID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestRenew_SequenceOfThreeThenFail(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	current := loan
	for i := 1; i <= 3; i++ {
		renewed := *current
		renewed.Status = model.StatusRenewed
		renewed.RenewalCount = i
		renewed.DueDate = current.DueDate.AddDate(0, 0, 14)

		f.repo.ExpectedCalls = nil
		f.repo.On("GetByID", mock.Anything, loan.ID).Return(current, nil)
		f.repo.On("RenewBorrow", mock.Anything, loan.ID, 14, 3, testStart).Return(&renewed, nil)

		got, err := f.service.Renew(context.Background(), loan.ID, user.ID, false)
		require.NoError(t, err)
		assert.Equal(t, i, got.RenewalCount)
		current = got
	}

	f.repo.ExpectedCalls = nil
	f.repo.On("GetByID", mock.Anything, loan.ID).Return(current, nil)

	_, err := f.service.Renew(context.Background(), loan.ID, user.ID, false)
	assert.ErrorIs(t, err, model.ErrRenewalLimit)
}

// =====================================================
// READS
// =====================================================

func TestGetTransaction_PastDueReadsAsOverdueBeforeSweep(t *testing.T) {
	// The row still says active because the hourly sweep has not run,
	// but the loan is three days past due. A read must not report it
	// as active.
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.Add(-72*time.Hour))

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	got, err := f.service.GetTransaction(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOverdue, got.Status)
}

func TestGetTransaction_ReturnedLoanKeepsItsStatus(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.Add(-72*time.Hour))
	loan.Status = model.StatusReturned

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	got, err := f.service.GetTransaction(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, got.Status)
}

func TestListMyTransactions_PastDueLoansReadAsOverdue(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()

	pastDue := *openLoan(user, book, testStart.Add(-72*time.Hour))
	current := *openLoan(user, book, testStart.AddDate(0, 0, 7))

	f.repo.On("ListByUser", mock.Anything, user.ID, 1, 20).
		Return([]model.Transaction{pastDue, current}, 2, nil)

	got, _, err := f.service.ListMyTransactions(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOverdue, got[0].Status)
	assert.Equal(t, model.StatusActive, got[1].Status)
}

func TestListTransactions_PastDueLoansReadAsOverdue(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	pastDue := *openLoan(user, book, testStart.Add(-72*time.Hour))

	f.repo.On("List", mock.Anything, mock.Anything).
		Return([]model.Transaction{pastDue}, 1, nil)

	got, _, err := f.service.ListTransactions(context.Background(), model.ListTransactionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOverdue, got[0].Status)
}

// =====================================================
// CACHE INVALIDATION
// =====================================================

func TestIssue_DropsBookDetailFromCache(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(0, nil)
	f.repo.On("CountOpenByUser", mock.Anything, user.ID).Return(0, nil)
	f.repo.On("IssueBorrow", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, f.cache.deleted, bookmodel.DetailCacheKey(book.ID.String()))
}

func TestReturn_DropsBookDetailFromCache(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()
	loan := openLoan(user, book, testStart.AddDate(0, 0, 14))

	closed := *loan
	closed.Status = model.StatusReturned

	f.repo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.repo.On("ReturnBorrow", mock.Anything, loan.ID, testStart, decimal.Zero).Return(&closed, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.notifier.On("EnqueueLoanNotice", mock.Anything, mock.Anything).Return()

	_, err := f.service.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Contains(t, f.cache.deleted, bookmodel.DetailCacheKey(book.ID.String()))
}

func TestIssue_GuardFailureLeavesCacheAlone(t *testing.T) {
	f := newFixture()
	book := activeBook()
	user := verifiedMember()

	f.books.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.repo.On("CountOverdueByUser", mock.Anything, user.ID, testStart).Return(0, nil)
	f.repo.On("CountOpenByUser", mock.Anything, user.ID).Return(0, nil)
	f.repo.On("IssueBorrow", mock.Anything, mock.Anything).Return(model.ErrBookUnavailable)

	_, err := f.service.Issue(context.Background(), issueReq(book, user), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookUnavailable)
	assert.Empty(t, f.cache.deleted)
}

// =====================================================
// SWEEP
// =====================================================

func TestSweepOverdue_PassesPolicyRate(t *testing.T) {
	f := newFixture()
	items := []model.OverdueItem{{TransactionID: uuid.New().String()}}

	f.repo.On("MarkOverdue", mock.Anything, testStart, 1).Return(items, nil)

	got, err := f.service.SweepOverdue(context.Background(), testStart)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDueSoon_UsesConfiguredWindow(t *testing.T) {
	f := newFixture()
	f.repo.On("FindDueSoon", mock.Anything, testStart, testStart.Add(48*time.Hour), 200).
		Return([]model.DueSoonItem{}, nil)

	_, err := f.service.DueSoon(context.Background(), testStart, 200)
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}
