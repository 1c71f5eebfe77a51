package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book/model"
	"library-backend/pkg/clock"
)

func TestExportBooks_WorkbookMirrorsCatalogPage(t *testing.T) {
	repo := new(MockBookRepo)
	svc := NewService(repo, clock.Fixed(testStart))

	coverURL := "http://localhost:9000/library/covers/abc/large.jpg"
	books := []model.Book{
		{
			ID:              uuid.New(),
			ISBN:            "978-0134190440",
			Title:           "The Go Programming Language",
			Author:          "Donovan, Kernighan",
			Genre:           model.GenreTechnology,
			Publisher:       "Addison-Wesley",
			PublishedYear:   2015,
			Keywords:        []string{"go", "programming"},
			TotalCopies:     3,
			AvailableCopies: 2,
			BorrowCount:     14,
			CreatedAt:       testStart,
			CoverURL:        &coverURL,
		},
		{
			ID:            uuid.New(),
			ISBN:          "978-0201633610",
			Title:         "Design Patterns",
			Author:        "Gamma",
			Genre:         model.GenreTechnology,
			PublishedYear: 1994,
			TotalCopies:   2,
			CreatedAt:     testStart,
		},
	}

	repo.On("List", mock.Anything, mock.AnythingOfType("model.ListBooksRequest")).
		Return(books, 2, nil)

	f, err := svc.ExportBooks(context.Background(), model.ListBooksRequest{})
	require.NoError(t, err)

	header, err := f.GetCellValue("Catalog", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	title, err := f.GetCellValue("Catalog", "C2")
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", title)

	keywords, err := f.GetCellValue("Catalog", "H2")
	require.NoError(t, err)
	assert.Equal(t, "go|programming", keywords)

	cover, err := f.GetCellValue("Catalog", "M2")
	require.NoError(t, err)
	assert.Equal(t, coverURL, cover)

	// Row without a cover leaves the cell blank.
	noCover, err := f.GetCellValue("Catalog", "M3")
	require.NoError(t, err)
	assert.Empty(t, noCover)
}

func TestExportBooks_PageSizeCappedAtHundred(t *testing.T) {
	repo := new(MockBookRepo)
	svc := NewService(repo, clock.Fixed(testStart))

	repo.On("List", mock.Anything, mock.MatchedBy(func(req model.ListBooksRequest) bool {
		return req.Page == 1 && req.Limit == 100
	})).Return([]model.Book{}, 0, nil)

	_, err := svc.ExportBooks(context.Background(), model.ListBooksRequest{Page: 0, Limit: 5000})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}
