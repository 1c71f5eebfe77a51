package model

import (
	"time"

	"github.com/shopspring/decimal"

	bookmodel "library-backend/internal/domains/book/model"
)

// DashboardStats is the admin overview aggregate.
type DashboardStats struct {
	Books        BookStats        `json:"books"`
	Members      MemberStats      `json:"members"`
	Loans        LoanStats        `json:"loans"`
	Fines        FineStats        `json:"fines"`
	MostBorrowed []bookmodel.PopularBook `json:"most_borrowed"`
	Recent       []RecentActivity `json:"recent_activity"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

type BookStats struct {
	TotalTitles  int `json:"total_titles"`
	TotalCopies  int `json:"total_copies"`
	CopiesOut    int `json:"copies_out"`
	CopiesOnHand int `json:"copies_on_hand"`
}

type MemberStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Verified int `json:"verified"`
}

type LoanStats struct {
	Active   int `json:"active"`
	Overdue  int `json:"overdue"`
	Returned int `json:"returned"`
	Total    int `json:"total"`
}

type FineStats struct {
	Assessed  decimal.Decimal `json:"assessed"`  // fines on open overdue loans
	Collected decimal.Decimal `json:"collected"` // fines finalized at return
}

// RecentActivity is one row of the latest-transactions feed.
type RecentActivity struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	BookTitle     string    `json:"book_title"`
	UserFullName  string    `json:"user_full_name"`
	OccurredAt    time.Time `json:"occurred_at"`
}
