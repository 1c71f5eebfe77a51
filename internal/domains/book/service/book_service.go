package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/shared/response"
	"library-backend/pkg/clock"
)

type bookService struct {
	repo  repository.RepositoryInterface
	clock clock.Clock
}

// NewService creates a new book service
func NewService(repo repository.RepositoryInterface, clk clock.Clock) ServiceInterface {
	return &bookService{repo: repo, clock: clk}
}

func (s *bookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	book := &model.Book{
		ID:              uuid.New(),
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		Publisher:       req.Publisher,
		PublishedYear:   req.PublishedYear,
		Keywords:        req.Keywords,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies, // all copies on the shelf at creation
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.Book, *response.Meta, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	books, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("list books: %w", err)
	}

	meta := &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	}
	return books, meta, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !book.IsActive {
		return nil, model.ErrBookInactive
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.Keywords != nil {
		book.Keywords = *req.Keywords
	}
	book.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	// Copy-count resize goes through the guarded repository update so the
	// inventory invariant cannot be broken by a shrink.
	if req.TotalCopies != nil && *req.TotalCopies != book.TotalCopies {
		if err := s.repo.UpdateTotalCopies(ctx, id, *req.TotalCopies); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, id)
	}

	return book, nil
}

// DeleteBook flags the book inactive. Rows are never physically removed
// because transactions keep referencing them.
func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *bookService) PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.repo.PopularBooks(ctx, limit)
}
