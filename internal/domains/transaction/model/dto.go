package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type IssueRequest struct {
	BookID  string     `json:"book_id"`
	UserID  string     `json:"user_id"`
	DueDate *time.Time `json:"due_date,omitempty"` // optional override of the default period
}

func (r IssueRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("book id is required"), is.UUID),
		validation.Field(&r.UserID, validation.Required.Error("user id is required"), is.UUID),
	)
}

type ListTransactionsRequest struct {
	UserID string // filter by borrower
	BookID string
	Status string // active, overdue, renewed, returned
	Page   int
	Limit  int
}

func (r ListTransactionsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(
			StatusActive, StatusOverdue, StatusRenewed, StatusReturned,
		).Error("invalid status filter")),
	)
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type ReturnResult struct {
	Transaction *Transaction    `json:"transaction"`
	FineCharged decimal.Decimal `json:"fine_charged"`
}

// DueSoonItem carries what the reminder jobs need without a second lookup.
type DueSoonItem struct {
	TransactionID string    `json:"transaction_id"`
	UserEmail     string    `json:"user_email"`
	UserFullName  string    `json:"user_full_name"`
	BookTitle     string    `json:"book_title"`
	DueDate       time.Time `json:"due_date"`
}

// OverdueItem is a freshly-swept or standing overdue loan plus the contact
// data for its notification.
type OverdueItem struct {
	TransactionID string          `json:"transaction_id"`
	UserEmail     string          `json:"user_email"`
	UserFullName  string          `json:"user_full_name"`
	UserPhone     string          `json:"user_phone,omitempty"`
	PhoneVerified bool            `json:"phone_verified"`
	BookTitle     string          `json:"book_title"`
	DueDate       time.Time       `json:"due_date"`
	FineAmount    decimal.Decimal `json:"fine_amount"`
}
