package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecomputeFine returns the fine a loan has accrued by now: the number of
// full 24h periods past the due date, rounded up, times the daily rate.
// The result never drops below the fine already assessed, so repeated
// recomputation is monotone non-decreasing. A returned loan keeps its
// finalized fine untouched.
func RecomputeFine(status string, dueDate time.Time, assessed decimal.Decimal, finePerDay int, now time.Time) decimal.Decimal {
	if status == StatusReturned {
		return assessed
	}
	if !now.After(dueDate) {
		return assessed
	}

	late := now.Sub(dueDate)
	days := int64(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}

	fine := decimal.NewFromInt(days).Mul(decimal.NewFromInt(int64(finePerDay)))
	if fine.LessThan(assessed) {
		return assessed
	}
	return fine
}

// FinalizeFine computes the fine owed at the return moment, measured against
// the due date in force before the return.
func FinalizeFine(dueDate time.Time, assessed decimal.Decimal, finePerDay int, returnedAt time.Time) decimal.Decimal {
	return RecomputeFine(StatusActive, dueDate, assessed, finePerDay, returnedAt)
}
