package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/response"
)

type ServiceInterface interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.Book, *response.Meta, error)
	ExportBooks(ctx context.Context, req model.ListBooksRequest) (*excelize.File, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error)
}
