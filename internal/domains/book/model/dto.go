package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var isbnPattern = regexp.MustCompile(`^[0-9Xx-]{10,17}$`)

// =====================================================
// REQUEST DTOs
// =====================================================

type CreateBookRequest struct {
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Genre         string   `json:"genre"`
	Publisher     string   `json:"publisher"`
	PublishedYear int      `json:"published_year"`
	Keywords      []string `json:"keywords"`
	TotalCopies   int      `json:"total_copies"`
}

func (r CreateBookRequest) Validate() error {
	currentYear := time.Now().Year()
	return validation.ValidateStruct(&r,
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			validation.Match(isbnPattern).Error("isbn must be a valid ISBN-10 or ISBN-13"),
		),
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Genre,
			validation.Required.Error("genre is required"),
			validation.By(validateGenre),
		),
		validation.Field(&r.Publisher, validation.Length(0, 255)),
		validation.Field(&r.PublishedYear,
			validation.Min(1450).Error("published year is too old"),
			validation.Max(currentYear).Error("published year cannot be in the future"),
		),
		validation.Field(&r.TotalCopies,
			validation.Required.Error("total copies is required"),
			validation.Min(1).Error("a book needs at least one copy"),
		),
	)
}

type UpdateBookRequest struct {
	Title         *string   `json:"title"`
	Author        *string   `json:"author"`
	Genre         *string   `json:"genre"`
	Publisher     *string   `json:"publisher"`
	PublishedYear *int      `json:"published_year"`
	Keywords      *[]string `json:"keywords"`
	TotalCopies   *int      `json:"total_copies"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Genre, validation.By(validateGenrePtr)),
		validation.Field(&r.TotalCopies, validation.Min(1).Error("a book needs at least one copy")),
	)
}

type ListBooksRequest struct {
	Search string // matches title, author or keywords
	Genre  string
	Sort   string // newest, title, popular
	Page   int
	Limit  int
}

func (r ListBooksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Genre, validation.By(validateGenre)),
		validation.Field(&r.Sort, validation.In("", "newest", "title", "popular")),
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
	)
}

func validateGenre(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !IsValidGenre(s) {
		return ErrInvalidGenre
	}
	return nil
}

func validateGenrePtr(value interface{}) error {
	p, _ := value.(*string)
	if p == nil {
		return nil
	}
	return validateGenre(*p)
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type ListBooksResponse struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

// PopularBook is a dashboard-style projection used by the popular endpoint.
type PopularBook struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	BorrowCount int    `json:"borrow_count"`
}
