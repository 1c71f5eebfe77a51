package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/pkg/clock"
)

const maxImportRows = 1000

// ImportServiceInterface handles bulk catalog loads from CSV files.
type ImportServiceInterface interface {
	ImportBooks(ctx context.Context, file *multipart.FileHeader) (*model.BulkImportResult, error)
}

type importService struct {
	repo  repository.RepositoryInterface
	clock clock.Clock
}

func NewImportService(repo repository.RepositoryInterface, clk clock.Clock) ImportServiceInterface {
	return &importService{repo: repo, clock: clk}
}

// ImportBooks runs the import in phases: parse the whole file, validate
// every row including ISBN dedupe, then insert all rows in a single
// database transaction. Nothing is written unless every row passes.
func (s *importService) ImportBooks(ctx context.Context, file *multipart.FileHeader) (*model.BulkImportResult, error) {
	log.Info().
		Str("file_name", file.Filename).
		Int64("file_size", file.Size).
		Msg("[ImportService] starting bulk import")

	rows, err := s.parseCSVFile(file)
	if err != nil {
		return &model.BulkImportResult{
			Success: false,
			Errors: []model.ImportValidationError{
				{Row: 0, Field: "file", Error: err.Error()},
			},
		}, nil
	}

	totalRows := len(rows)
	if totalRows > maxImportRows {
		return &model.BulkImportResult{
			Success:   false,
			TotalRows: totalRows,
			Errors: []model.ImportValidationError{
				{Row: 0, Field: "file", Error: fmt.Sprintf("file exceeds %d rows limit", maxImportRows)},
			},
		}, nil
	}

	validationErrors, err := s.validateAllRows(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(validationErrors) > 0 {
		log.Warn().
			Int("error_count", len(validationErrors)).
			Msg("[ImportService] import validation failed")

		return &model.BulkImportResult{
			Success:    false,
			TotalRows:  totalRows,
			FailedRows: len(validationErrors),
			Errors:     validationErrors,
		}, nil
	}

	now := s.clock.Now()
	books := make([]*model.Book, 0, totalRows)
	for _, row := range rows {
		books = append(books, &model.Book{
			ID:              uuid.New(),
			ISBN:            row.ISBN,
			Title:           row.Title,
			Author:          row.Author,
			Genre:           row.Genre,
			Publisher:       row.Publisher,
			PublishedYear:   row.PublishedYear,
			Keywords:        row.Keywords,
			TotalCopies:     row.TotalCopies,
			AvailableCopies: row.TotalCopies,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if err := s.repo.CreateBatch(ctx, books); err != nil {
		return nil, fmt.Errorf("bulk insert failed: %w", err)
	}

	created := make([]model.Book, len(books))
	for i, b := range books {
		created[i] = *b
	}

	log.Info().
		Int("success_count", len(created)).
		Msg("[ImportService] bulk import completed")

	return &model.BulkImportResult{
		Success:      true,
		TotalRows:    totalRows,
		SuccessRows:  len(created),
		CreatedBooks: created,
	}, nil
}

func (s *importService) parseCSVFile(file *multipart.FileHeader) ([]model.CSVBookRow, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty (no data rows)")
	}

	colMap := buildColumnIndexMap(records[0])

	var rows []model.CSVBookRow
	for i, record := range records[1:] { // skip header
		row, err := parseCSVRow(record, colMap, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func buildColumnIndexMap(header []string) map[string]int {
	colMap := make(map[string]int)
	for i, colName := range header {
		colMap[strings.TrimSpace(strings.ToLower(colName))] = i
	}
	return colMap
}

func parseCSVRow(record []string, colMap map[string]int, rowNum int) (model.CSVBookRow, error) {
	row := model.CSVBookRow{Row: rowNum}

	getCol := func(name string) string {
		if idx, ok := colMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	row.ISBN = getCol("isbn")
	row.Title = getCol("title")
	row.Author = getCol("author")
	row.Genre = getCol("genre")
	row.Publisher = getCol("publisher")

	if val := getCol("published_year"); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return row, fmt.Errorf("invalid published_year: %s", val)
		}
		row.PublishedYear = year
	}

	if val := getCol("total_copies"); val != "" {
		copies, err := strconv.Atoi(val)
		if err != nil {
			return row, fmt.Errorf("invalid total_copies: %s", val)
		}
		row.TotalCopies = copies
	}

	// Keywords are pipe-delimited: "golang|databases|concurrency"
	if val := getCol("keywords"); val != "" {
		for _, kw := range strings.Split(val, "|") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				row.Keywords = append(row.Keywords, strings.ToLower(kw))
			}
		}
	}

	return row, nil
}

// validateAllRows checks every row before anything is inserted. Each
// row goes through the same validation as single creation, plus in-file
// and catalog ISBN dedupe.
func (s *importService) validateAllRows(ctx context.Context, rows []model.CSVBookRow) ([]model.ImportValidationError, error) {
	var validationErrors []model.ImportValidationError
	seenISBN := make(map[string]int, len(rows))

	for _, row := range rows {
		req := model.CreateBookRequest{
			ISBN:          row.ISBN,
			Title:         row.Title,
			Author:        row.Author,
			Genre:         row.Genre,
			Publisher:     row.Publisher,
			PublishedYear: row.PublishedYear,
			Keywords:      row.Keywords,
			TotalCopies:   row.TotalCopies,
		}
		if err := req.Validate(); err != nil {
			var vErrs validation.Errors
			if errors.As(err, &vErrs) {
				for field, fieldErr := range vErrs {
					validationErrors = append(validationErrors, model.ImportValidationError{
						Row:   row.Row,
						Field: field,
						Error: fieldErr.Error(),
					})
				}
			} else {
				validationErrors = append(validationErrors, model.ImportValidationError{
					Row:   row.Row,
					Field: "row",
					Error: err.Error(),
				})
			}
			continue
		}

		if firstRow, dup := seenISBN[row.ISBN]; dup {
			validationErrors = append(validationErrors, model.ImportValidationError{
				Row:   row.Row,
				Field: "isbn",
				Error: fmt.Sprintf("duplicate of row %d", firstRow),
			})
			continue
		}
		seenISBN[row.ISBN] = row.Row

		_, err := s.repo.GetByISBN(ctx, row.ISBN)
		switch {
		case err == nil:
			validationErrors = append(validationErrors, model.ImportValidationError{
				Row:   row.Row,
				Field: "isbn",
				Error: model.ErrISBNAlreadyExists.Error(),
			})
		case errors.Is(err, model.ErrBookNotFound):
			// new ISBN, nothing to do
		default:
			return nil, fmt.Errorf("isbn lookup failed: %w", err)
		}
	}

	return validationErrors, nil
}
