package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/storage"
)

// CoverStore is the object store surface cover handling needs.
// *storage.MinIOStorage satisfies it.
type CoverStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// CoverServiceInterface manages cover images for catalog entries.
type CoverServiceInterface interface {
	UploadCover(ctx context.Context, bookID uuid.UUID, data []byte) (*model.Book, error)
	RemoveCover(ctx context.Context, bookID uuid.UUID) error
}

type coverService struct {
	repo      repository.RepositoryInterface
	store     CoverStore
	processor *storage.ImageProcessor
}

func NewCoverService(repo repository.RepositoryInterface, store CoverStore, processor *storage.ImageProcessor) CoverServiceInterface {
	return &coverService{repo: repo, store: store, processor: processor}
}

func coverPrefix(bookID uuid.UUID) string {
	return fmt.Sprintf("covers/%s/", bookID)
}

// UploadCover validates the upload, renders the size variants and
// stores them under covers/<book-id>/. The book's cover_url points at
// the large variant; the other sizes share the prefix.
func (s *coverService) UploadCover(ctx context.Context, bookID uuid.UUID, data []byte) (*model.Book, error) {
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsActive {
		return nil, model.ErrBookInactive
	}

	if err := s.processor.ValidateImage(data); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidCover, err)
	}

	variants, err := s.processor.ProcessImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidCover, err)
	}

	// Drop the previous cover's objects before writing the new set.
	if err := s.store.DeleteByPrefix(ctx, coverPrefix(bookID)); err != nil {
		log.Warn().Err(err).Str("book_id", bookID.String()).
			Msg("[CoverService] failed to remove previous cover objects")
	}

	var largeURL string
	for name, payload := range variants {
		key := fmt.Sprintf("covers/%s/%s.jpg", bookID, name)
		url, err := s.store.Upload(ctx, key, payload, "image/jpeg")
		if err != nil {
			return nil, fmt.Errorf("upload cover %s: %w", name, err)
		}
		if name == "large" {
			largeURL = url
		}
	}

	if err := s.repo.SetCoverURL(ctx, bookID, &largeURL); err != nil {
		return nil, err
	}

	book.CoverURL = &largeURL
	return book, nil
}

// RemoveCover deletes the stored variants and clears the URL.
func (s *coverService) RemoveCover(ctx context.Context, bookID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, bookID); err != nil {
		return err
	}

	if err := s.store.DeleteByPrefix(ctx, coverPrefix(bookID)); err != nil {
		return fmt.Errorf("remove cover objects: %w", err)
	}

	return s.repo.SetCoverURL(ctx, bookID, nil)
}
