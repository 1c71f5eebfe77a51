package model

// =====================================================
// BULK IMPORT TYPES
// =====================================================

// CSVBookRow is one parsed row of an import file, before validation.
type CSVBookRow struct {
	Row           int // 1-based line number in the file, header included
	ISBN          string
	Title         string
	Author        string
	Genre         string
	Publisher     string
	PublishedYear int
	Keywords      []string
	TotalCopies   int
}

// ImportValidationError pins a problem to a row and field so the
// uploader can fix the file and retry.
type ImportValidationError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Error string `json:"error"`
}

// BulkImportResult is all-or-nothing: either every row was inserted or
// Errors explains why none were.
type BulkImportResult struct {
	Success      bool                    `json:"success"`
	TotalRows    int                     `json:"total_rows"`
	SuccessRows  int                     `json:"success_rows,omitempty"`
	FailedRows   int                     `json:"failed_rows,omitempty"`
	CreatedBooks []Book                  `json:"created_books,omitempty"`
	Errors       []ImportValidationError `json:"errors,omitempty"`
}
