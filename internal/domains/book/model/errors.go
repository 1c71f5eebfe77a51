package model

import "errors"

var (
	// Not Found
	ErrBookNotFound = errors.New("book not found")

	// Conflict
	ErrISBNAlreadyExists = errors.New("a book with this ISBN already exists")
	ErrBookInactive      = errors.New("book has been removed from the catalog")
	ErrCopiesInUse       = errors.New("cannot reduce total copies below the number currently borrowed")

	// Validation
	ErrInvalidGenre = errors.New("invalid genre")
	ErrInvalidCover = errors.New("cover must be a jpeg or png image up to 5MB")
)
