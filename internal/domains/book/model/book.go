package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// GENRE CONSTANTS
// =====================================================
const (
	GenreFiction    = "fiction"
	GenreNonFiction = "non_fiction"
	GenreScience    = "science"
	GenreHistory    = "history"
	GenreBiography  = "biography"
	GenreTechnology = "technology"
	GenreChildren   = "children"
	GenreOther      = "other"
)

// ValidGenres is the fixed catalog category list.
var ValidGenres = []string{
	GenreFiction, GenreNonFiction, GenreScience, GenreHistory,
	GenreBiography, GenreTechnology, GenreChildren, GenreOther,
}

func IsValidGenre(genre string) bool {
	for _, g := range ValidGenres {
		if g == genre {
			return true
		}
	}
	return false
}

// =====================================================
// ENTITY: Book
// =====================================================
type Book struct {
	ID            uuid.UUID `json:"id"`
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Publisher     string    `json:"publisher"`
	PublishedYear int       `json:"published_year"`
	Keywords      []string  `json:"keywords,omitempty"`
	CoverURL      *string   `json:"cover_url,omitempty"`

	// Inventory. AvailableCopies is mutated only by the transaction
	// engine; 0 <= AvailableCopies <= TotalCopies always holds.
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`

	// Usage stats
	BorrowCount    int        `json:"borrow_count"`
	LastBorrowedAt *time.Time `json:"last_borrowed_at,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DetailCacheKey is the Redis key caching one book's detail view.
// Everything that mutates a book row invalidates through this helper,
// the transaction engine included.
func DetailCacheKey(id string) string {
	return "book:detail:" + id
}

// HasAvailableCopies reports whether a copy can be issued right now.
func (b *Book) HasAvailableCopies() bool {
	return b.IsActive && b.AvailableCopies > 0
}

// InventoryConsistent checks the copy-count invariant.
func (b *Book) InventoryConsistent() bool {
	return b.TotalCopies >= 1 &&
		b.AvailableCopies >= 0 &&
		b.AvailableCopies <= b.TotalCopies
}
