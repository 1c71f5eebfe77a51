package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// RepositoryInterface is the book catalog data access contract.
// Inventory counters are read here but mutated only by the transaction
// repository, inside the same database transaction as the loan row.
type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	CreateBatch(ctx context.Context, books []*model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error)
	Update(ctx context.Context, book *model.Book) error
	UpdateTotalCopies(ctx context.Context, id uuid.UUID, newTotal int) error
	SetCoverURL(ctx context.Context, id uuid.UUID, url *string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error)
}
