package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	bookmodel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/transaction/model"
	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared"
)

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) IssueBorrow(ctx context.Context, t *model.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionRepo) ReturnBorrow(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*model.Transaction, error) {
	args := m.Called(ctx, id, returnedAt, fine)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) RenewBorrow(ctx context.Context, id uuid.UUID, periodDays, maxRenewals int, now time.Time) (*model.Transaction, error) {
	args := m.Called(ctx, id, periodDays, maxRenewals, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) MarkOverdue(ctx context.Context, now time.Time, finePerDay int) ([]model.OverdueItem, error) {
	args := m.Called(ctx, now, finePerDay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OverdueItem), args.Error(1)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, req model.ListTransactionsRequest) ([]model.Transaction, int, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]model.Transaction), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]model.Transaction), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepo) CountOpenByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepo) CountOverdueByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	args := m.Called(ctx, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepo) FindDueSoon(ctx context.Context, from, to time.Time, limit int) ([]model.DueSoonItem, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DueSoonItem), args.Error(1)
}

func (m *MockTransactionRepo) FindOverdue(ctx context.Context, now time.Time, finePerDay, limit int) ([]model.OverdueItem, error) {
	args := m.Called(ctx, now, finePerDay, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OverdueItem), args.Error(1)
}

// MockBookRepo
type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) Create(ctx context.Context, book *bookmodel.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepo) CreateBatch(ctx context.Context, books []*bookmodel.Book) error {
	args := m.Called(ctx, books)
	return args.Error(0)
}

func (m *MockBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookmodel.Book), args.Error(1)
}

func (m *MockBookRepo) GetByISBN(ctx context.Context, isbn string) (*bookmodel.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookmodel.Book), args.Error(1)
}

func (m *MockBookRepo) List(ctx context.Context, req bookmodel.ListBooksRequest) ([]bookmodel.Book, int, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]bookmodel.Book), args.Int(1), args.Error(2)
}

func (m *MockBookRepo) Update(ctx context.Context, book *bookmodel.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepo) UpdateTotalCopies(ctx context.Context, id uuid.UUID, newTotal int) error {
	args := m.Called(ctx, id, newTotal)
	return args.Error(0)
}

func (m *MockBookRepo) SetCoverURL(ctx context.Context, id uuid.UUID, url *string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockBookRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookRepo) PopularBooks(ctx context.Context, limit int) ([]bookmodel.PopularBook, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookmodel.PopularBook), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *usermodel.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*usermodel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepo) GetByPhone(ctx context.Context, phone string) (*usermodel.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, req usermodel.ListUsersRequest) ([]usermodel.User, int, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]usermodel.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepo) Update(ctx context.Context, user *usermodel.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	args := m.Called(ctx, id, isActive)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepo) SetEmailToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepo) FindByEmailToken(ctx context.Context, token string) (*usermodel.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) SetPhoneOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) error {
	args := m.Called(ctx, id, otp, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepo) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier records enqueued notices.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) EnqueueLoanNotice(ctx context.Context, p shared.EmailNoticePayload) {
	m.Called(ctx, p)
}

// spyCache satisfies cache.Cache and records which keys were deleted.
// Reads always miss; the service only deletes through it.
type spyCache struct {
	deleted []string
}

func (c *spyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *spyCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *spyCache) Delete(ctx context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

func (c *spyCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (c *spyCache) Ping(ctx context.Context) error                         { return nil }
func (c *spyCache) Increment(ctx context.Context, key string) (int64, error) {
	return 0, nil
}
func (c *spyCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }
func (c *spyCache) Exists(ctx context.Context, key string) (bool, error)            { return false, nil }
func (c *spyCache) TTL(ctx context.Context, key string) (time.Duration, error)      { return 0, nil }
