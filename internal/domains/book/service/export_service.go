package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"library-backend/internal/domains/book/model"
)

// ExportBooks renders one page of the catalog as an Excel workbook.
// The page size is capped at 100 rows per file.
func (s *bookService) ExportBooks(ctx context.Context, req model.ListBooksRequest) (*excelize.File, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	books, _, err := s.ListBooks(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	f, err := buildBooksWorkbook(books)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}

	return f, nil
}

func buildBooksWorkbook(books []model.Book) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Catalog"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{
		"ID",
		"ISBN",
		"Title",
		"Author",
		"Genre",
		"Publisher",
		"Published Year",
		"Keywords",
		"Total Copies",
		"Available Copies",
		"Borrow Count",
		"Created At",
		"Cover URL",
	}

	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "M1", headerStyle)
	}

	for i, b := range books {
		rowNum := i + 2

		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		f.SetCellValue(sheetName, cell(1), b.ID.String())
		f.SetCellValue(sheetName, cell(2), b.ISBN)
		f.SetCellValue(sheetName, cell(3), b.Title)
		f.SetCellValue(sheetName, cell(4), b.Author)
		f.SetCellValue(sheetName, cell(5), b.Genre)
		f.SetCellValue(sheetName, cell(6), b.Publisher)
		f.SetCellValue(sheetName, cell(7), b.PublishedYear)
		f.SetCellValue(sheetName, cell(8), strings.Join(b.Keywords, "|"))
		f.SetCellValue(sheetName, cell(9), b.TotalCopies)
		f.SetCellValue(sheetName, cell(10), b.AvailableCopies)
		f.SetCellValue(sheetName, cell(11), b.BorrowCount)
		f.SetCellValue(sheetName, cell(12), b.CreatedAt.Format("2006-01-02 15:04:05"))
		if b.CoverURL != nil {
			f.SetCellValue(sheetName, cell(13), *b.CoverURL)
		}
	}

	return f, nil
}
