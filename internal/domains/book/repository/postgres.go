package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"library-backend/internal/domains/book/model"
	"library-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface
type postgresRepository struct {
	db database.DB
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db database.DB) RepositoryInterface {
	return &postgresRepository{db: db}
}

const bookColumns = `
	id, isbn, title, author, genre, publisher, published_year, keywords, cover_url,
	total_copies, available_copies, borrow_count, last_borrowed_at,
	is_active, created_at, updated_at
`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Genre, &b.Publisher,
		&b.PublishedYear, pq.Array(&b.Keywords), &b.CoverURL,
		&b.TotalCopies, &b.AvailableCopies, &b.BorrowCount, &b.LastBorrowedAt,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}
	return &b, nil
}

// Create implements Repository.Create
func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, isbn, title, author, genre, publisher, published_year, keywords,
			total_copies, available_copies, borrow_count,
			is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.Exec(ctx, query,
		book.ID, book.ISBN, book.Title, book.Author, book.Genre,
		book.Publisher, book.PublishedYear, pq.Array(book.Keywords),
		book.TotalCopies, book.AvailableCopies, book.BorrowCount,
		book.IsActive, book.CreatedAt, book.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrISBNAlreadyExists
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// CreateBatch inserts a pre-validated import in one database
// transaction. Any failed row rolls back the whole batch.
func (r *postgresRepository) CreateBatch(ctx context.Context, books []*model.Book) error {
	query := `
		INSERT INTO books (
			id, isbn, title, author, genre, publisher, published_year, keywords,
			total_copies, available_copies, borrow_count,
			is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		for _, book := range books {
			_, err := tx.Exec(ctx, query,
				book.ID, book.ISBN, book.Title, book.Author, book.Genre,
				book.Publisher, book.PublishedYear, pq.Array(book.Keywords),
				book.TotalCopies, book.AvailableCopies, book.BorrowCount,
				book.IsActive, book.CreatedAt, book.UpdatedAt,
			)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23505" {
					return model.ErrISBNAlreadyExists
				}
				return fmt.Errorf("failed to insert book %s: %w", book.ISBN, err)
			}
		}
		return nil
	})
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	return scanBook(r.db.QueryRow(ctx, query, isbn))
}

// List implements search + pagination. Search matches title, author or any
// keyword; inactive books are hidden from the catalog.
func (r *postgresRepository) List(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error) {
	conditions := []string{"is_active = TRUE"}
	args := []interface{}{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR author ILIKE $%d OR $%d = ANY(keywords))",
			argPos, argPos, argPos+1))
		args = append(args, "%"+req.Search+"%", strings.ToLower(req.Search))
		argPos += 2
	}

	if req.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argPos))
		args = append(args, req.Genre)
		argPos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM books " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	orderBy := "created_at DESC"
	switch req.Sort {
	case "title":
		orderBy = "title ASC"
	case "popular":
		orderBy = "borrow_count DESC, title ASC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM books %s ORDER BY %s LIMIT $%d OFFSET $%d",
		bookColumns, where, orderBy, argPos, argPos+1)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate books: %w", err)
	}

	return books, total, nil
}

// Update rewrites catalog metadata. Inventory counters are intentionally
// not touched here.
func (r *postgresRepository) Update(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books SET
			title = $2, author = $3, genre = $4, publisher = $5,
			published_year = $6, keywords = $7, updated_at = $8
		WHERE id = $1 AND is_active = TRUE
	`

	tag, err := r.db.Exec(ctx, query,
		book.ID, book.Title, book.Author, book.Genre, book.Publisher,
		book.PublishedYear, pq.Array(book.Keywords), book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// UpdateTotalCopies resizes the inventory. The guard keeps available_copies
// within [0, total_copies]: shrinking below the number of copies currently
// out is rejected.
func (r *postgresRepository) UpdateTotalCopies(ctx context.Context, id uuid.UUID, newTotal int) error {
	query := `
		UPDATE books
		SET total_copies = $2,
		    available_copies = available_copies + ($2 - total_copies),
		    updated_at = NOW()
		WHERE id = $1
		  AND is_active = TRUE
		  AND available_copies + ($2 - total_copies) >= 0
	`

	tag, err := r.db.Exec(ctx, query, id, newTotal)
	if err != nil {
		return fmt.Errorf("update total copies: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the book is gone or the shrink would strand borrowed copies.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return model.ErrCopiesInUse
	}
	return nil
}

// SetCoverURL points the book at its processed cover image. A nil url
// clears the cover.
func (r *postgresRepository) SetCoverURL(ctx context.Context, id uuid.UUID, url *string) error {
	query := `UPDATE books SET cover_url = $2, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	tag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("set cover url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE books SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error) {
	query := `
		SELECT id, title, author, borrow_count
		FROM books
		WHERE is_active = TRUE AND borrow_count > 0
		ORDER BY borrow_count DESC, last_borrowed_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("popular books: %w", err)
	}
	defer rows.Close()

	var result []model.PopularBook
	for rows.Next() {
		var pb model.PopularBook
		var id uuid.UUID
		if err := rows.Scan(&id, &pb.Title, &pb.Author, &pb.BorrowCount); err != nil {
			return nil, fmt.Errorf("scan popular book: %w", err)
		}
		pb.ID = id.String()
		result = append(result, pb)
	}
	return result, rows.Err()
}
