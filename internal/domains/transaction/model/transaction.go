package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// TYPE AND STATUS CONSTANTS
// =====================================================

// Transaction types record the last circulation action taken.
const (
	TypeBorrow  = "borrow"
	TypeReturn  = "return"
	TypeRenewal = "renewal"
)

// Statuses. "returned" is terminal; everything else can still move.
const (
	StatusActive   = "active"
	StatusOverdue  = "overdue"
	StatusRenewed  = "renewed"
	StatusReturned = "returned"
)

// =====================================================
// ENTITY: Transaction
// =====================================================

// Transaction is a single loan of one book copy to one user. The lifecycle
// engine owns status, due_date, fine_amount and renewal_count; nothing else
// writes them.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	BookID      uuid.UUID `json:"book_id"`
	ProcessedBy uuid.UUID `json:"processed_by"` // staff account that issued the loan

	Type   string `json:"type"`
	Status string `json:"status"`

	BorrowDate   time.Time       `json:"borrow_date"`
	DueDate      time.Time       `json:"due_date"`
	ReturnDate   *time.Time      `json:"return_date,omitempty"`
	FineAmount   decimal.Decimal `json:"fine_amount"`
	RenewalCount int             `json:"renewal_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Denormalized for list views, populated by JOIN. Not stored.
	BookTitle    string `json:"book_title,omitempty"`
	BookISBN     string `json:"book_isbn,omitempty"`
	UserFullName string `json:"user_full_name,omitempty"`
}

// IsTerminal reports whether the loan is closed.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusReturned
}

// IsOpen reports whether the loan still holds a copy.
func (t *Transaction) IsOpen() bool {
	return !t.IsTerminal()
}

// EffectiveStatus resolves the lazy overdue state: a loan past its due date
// is overdue the moment the clock passes it, whether or not the sweep job
// has marked the row yet.
func (t *Transaction) EffectiveStatus(now time.Time) string {
	if t.Status == StatusReturned || t.Status == StatusOverdue {
		return t.Status
	}
	if now.After(t.DueDate) {
		return StatusOverdue
	}
	return t.Status
}

// CanRenew checks renewal eligibility against the effective state. Only a
// loan that is effectively active (or renewed and not past due) and under
// the renewal limit qualifies.
func (t *Transaction) CanRenew(maxRenewals int, now time.Time) bool {
	eff := t.EffectiveStatus(now)
	if eff != StatusActive && eff != StatusRenewed {
		return false
	}
	return t.RenewalCount < maxRenewals
}
