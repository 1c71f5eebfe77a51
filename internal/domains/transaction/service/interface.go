package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/transaction/model"
)

// ServiceInterface is the loan lifecycle engine. All status, due date, fine
// and renewal mutations in the system go through these operations.
type ServiceInterface interface {
	Issue(ctx context.Context, req model.IssueRequest, processedBy uuid.UUID) (*model.Transaction, error)
	Return(ctx context.Context, id uuid.UUID) (*model.ReturnResult, error)

	// Renew extends a loan. actorID must be the borrower unless actorIsAdmin.
	Renew(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) (*model.Transaction, error)

	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListTransactions(ctx context.Context, req model.ListTransactionsRequest) ([]model.Transaction, int, error)
	ListMyTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int, error)

	// SweepOverdue promotes past-due loans and returns the newly-overdue
	// set so the caller can fan out notifications.
	SweepOverdue(ctx context.Context, now time.Time) ([]model.OverdueItem, error)

	// Reminder feeds for the scheduled jobs.
	DueSoon(ctx context.Context, now time.Time, limit int) ([]model.DueSoonItem, error)
	Overdue(ctx context.Context, now time.Time, limit int) ([]model.OverdueItem, error)
}
