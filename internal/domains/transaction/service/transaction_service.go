package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	bookmodel "library-backend/internal/domains/book/model"
	bookrepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/domains/transaction/model"
	"library-backend/internal/domains/transaction/repository"
	usermodel "library-backend/internal/domains/user/model"
	userrepo "library-backend/internal/domains/user/repository"
	"library-backend/internal/shared"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/cache"
	"library-backend/pkg/clock"
)

// Notifier enqueues loan notices. Implemented by the queue client; sends are
// fire-and-forget and never influence the result of an operation.
type Notifier interface {
	EnqueueLoanNotice(ctx context.Context, p shared.EmailNoticePayload)
}

// LoanPolicy is the circulation rule set the engine enforces.
type LoanPolicy struct {
	BorrowPeriodDays int
	MaxRenewals      int
	BorrowCap        int
	FinePerDay       int
	DueSoonWindow    time.Duration
}

type transactionService struct {
	repo   repository.RepositoryInterface
	books  bookrepo.RepositoryInterface
	users  userrepo.RepositoryInterface
	queue  Notifier
	cache  cache.Cache
	policy LoanPolicy
	clock  clock.Clock
}

func NewService(
	repo repository.RepositoryInterface,
	books bookrepo.RepositoryInterface,
	users userrepo.RepositoryInterface,
	queueClient Notifier,
	cacheClient cache.Cache,
	policy LoanPolicy,
	clk clock.Clock,
) ServiceInterface {
	return &transactionService{
		repo:   repo,
		books:  books,
		users:  users,
		queue:  queueClient,
		cache:  cacheClient,
		policy: policy,
		clock:  clk,
	}
}

// =====================================================
// ISSUE
// =====================================================

// Issue runs the borrow preconditions in a fixed order so callers get a
// deterministic first failure, then hands the atomic effect to the
// repository. The availability check here is advisory only; the database
// guard is what actually prevents overselling the last copy.
func (s *transactionService) Issue(ctx context.Context, req model.IssueRequest, processedBy uuid.UUID) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	bookID := utils.ParseStringToUUID(req.BookID)
	userID := utils.ParseStringToUUID(req.UserID)

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsActive {
		return nil, bookmodel.ErrBookInactive
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, usermodel.ErrUserInactive
	}
	if !user.IsVerified() {
		return nil, usermodel.ErrUserNotVerified
	}

	if !book.HasAvailableCopies() {
		return nil, model.ErrBookUnavailable
	}

	overdue, err := s.repo.CountOverdueByUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if overdue > 0 {
		return nil, model.ErrBorrowerOverdue
	}

	open, err := s.repo.CountOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open >= s.policy.BorrowCap {
		return nil, model.ErrBorrowCapReached
	}

	dueDate := now.AddDate(0, 0, s.policy.BorrowPeriodDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	t := &model.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		BookID:       bookID,
		ProcessedBy:  processedBy,
		Type:         model.TypeBorrow,
		Status:       model.StatusActive,
		BorrowDate:   now,
		DueDate:      dueDate,
		FineAmount:   decimal.Zero,
		RenewalCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.IssueBorrow(ctx, t); err != nil {
		return nil, err
	}

	s.invalidateBookDetail(ctx, bookID)
	s.notify(ctx, shared.NoticeIssued, user.Email, user.FullName, book.Title, t.DueDate, decimal.Zero)

	log.Info().
		Str("transaction_id", t.ID.String()).
		Str("book_id", bookID.String()).
		Str("user_id", userID.String()).
		Time("due_date", t.DueDate).
		Msg("[TransactionService] book issued")

	return t, nil
}

// =====================================================
// RETURN
// =====================================================

// Return closes a loan from any non-terminal state. The fine is finalized
// against the due date in force before the return and never drops below the
// amount already assessed by the sweep.
func (s *transactionService) Return(ctx context.Context, id uuid.UUID) (*model.ReturnResult, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.IsTerminal() {
		return nil, model.ErrAlreadyReturned
	}

	now := s.clock.Now()
	fine := model.FinalizeFine(t.DueDate, t.FineAmount, s.policy.FinePerDay, now)

	closed, err := s.repo.ReturnBorrow(ctx, id, now, fine)
	if err != nil {
		return nil, err
	}

	s.invalidateBookDetail(ctx, closed.BookID)
	s.notifyForTransaction(ctx, shared.NoticeReturned, closed, closed.FineAmount)

	log.Info().
		Str("transaction_id", id.String()).
		Str("fine", closed.FineAmount.String()).
		Msg("[TransactionService] book returned")

	return &model.ReturnResult{Transaction: closed, FineCharged: closed.FineAmount}, nil
}

// =====================================================
// RENEW
// =====================================================

// Renew extends a loan by the borrow period. The effective state is checked
// first: a loan past its due date is overdue even before the sweep marks it,
// and overdue loans do not renew. The database guard repeats the rule so a
// racing sweep or returner cannot invalidate the decision.
func (s *transactionService) Renew(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (*model.Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && t.UserID != actorID {
		return nil, model.ErrNotTransactionOwner
	}

	now := s.clock.Now()
	switch {
	case t.Status == model.StatusReturned:
		return nil, model.ErrAlreadyReturned
	case t.EffectiveStatus(now) == model.StatusOverdue:
		return nil, model.ErrRenewWhileOverdue
	case t.RenewalCount >= s.policy.MaxRenewals:
		return nil, model.ErrRenewalLimit
	}

	renewed, err := s.repo.RenewBorrow(ctx, id, s.policy.BorrowPeriodDays, s.policy.MaxRenewals, now)
	if err != nil {
		return nil, err
	}

	s.notifyForTransaction(ctx, shared.NoticeRenewed, renewed, decimal.Zero)

	log.Info().
		Str("transaction_id", id.String()).
		Int("renewal_count", renewed.RenewalCount).
		Time("due_date", renewed.DueDate).
		Msg("[TransactionService] loan renewed")

	return renewed, nil
}

// =====================================================
// READS
// =====================================================

// Reads report the effective status, not the stored one: a loan past
// its due date shows as overdue even if the hourly sweep has not
// persisted the flip yet.

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = t.EffectiveStatus(s.clock.Now())
	return t, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, req model.ListTransactionsRequest) ([]model.Transaction, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	ts, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	s.applyEffectiveStatus(ts)
	return ts, total, nil
}

func (s *transactionService) ListMyTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ts, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	s.applyEffectiveStatus(ts)
	return ts, total, nil
}

func (s *transactionService) applyEffectiveStatus(ts []model.Transaction) {
	now := s.clock.Now()
	for i := range ts {
		ts[i].Status = ts[i].EffectiveStatus(now)
	}
}

// =====================================================
// SWEEP AND REMINDER FEEDS
// =====================================================

func (s *transactionService) SweepOverdue(ctx context.Context, now time.Time) ([]model.OverdueItem, error) {
	return s.repo.MarkOverdue(ctx, now, s.policy.FinePerDay)
}

func (s *transactionService) DueSoon(ctx context.Context, now time.Time, limit int) ([]model.DueSoonItem, error) {
	return s.repo.FindDueSoon(ctx, now, now.Add(s.policy.DueSoonWindow), limit)
}

func (s *transactionService) Overdue(ctx context.Context, now time.Time, limit int) ([]model.OverdueItem, error) {
	return s.repo.FindOverdue(ctx, now, s.policy.FinePerDay, limit)
}

// invalidateBookDetail drops the cached detail view after the engine
// moves a copy in or out. Without this the cached available_copies
// would lie for up to the detail TTL.
func (s *transactionService) invalidateBookDetail(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookmodel.DetailCacheKey(bookID.String())); err != nil {
		log.Warn().Err(err).Str("book_id", bookID.String()).
			Msg("[TransactionService] failed to invalidate book detail cache")
	}
}

// =====================================================
// NOTIFICATIONS
// =====================================================

func (s *transactionService) notify(ctx context.Context, kind, email, name, bookTitle string, dueDate time.Time, fine decimal.Decimal) {
	s.queue.EnqueueLoanNotice(ctx, shared.EmailNoticePayload{
		Kind:       kind,
		Email:      email,
		Name:       name,
		BookTitle:  bookTitle,
		DueDate:    dueDate.Format(time.RFC3339),
		FineAmount: fine.String(),
	})
}

// notifyForTransaction looks up the borrower and book for a loan and sends
// the notice. Lookup failures are logged and dropped: the state change has
// already committed.
func (s *transactionService) notifyForTransaction(ctx context.Context, kind string, t *model.Transaction, fine decimal.Decimal) {
	user, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", t.ID.String()).Msg("[TransactionService] notification lookup failed")
		return
	}
	book, err := s.books.GetByID(ctx, t.BookID)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", t.ID.String()).Msg("[TransactionService] notification lookup failed")
		return
	}
	s.notify(ctx, kind, user.Email, user.FullName, book.Title, t.DueDate, fine)
}
