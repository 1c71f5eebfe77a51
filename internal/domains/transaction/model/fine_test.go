package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const testRate = 1

var due = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRecomputeFine_NotLate(t *testing.T) {
	fine := RecomputeFine(StatusActive, due, decimal.Zero, testRate, due.Add(-time.Hour))
	assert.True(t, fine.IsZero())
}

func TestRecomputeFine_ExactlyAtDueDate(t *testing.T) {
	fine := RecomputeFine(StatusActive, due, decimal.Zero, testRate, due)
	assert.True(t, fine.IsZero())
}

func TestRecomputeFine_PartialDayRoundsUp(t *testing.T) {
	// One second late already counts as one full day.
	fine := RecomputeFine(StatusActive, due, decimal.Zero, testRate, due.Add(time.Second))
	assert.True(t, fine.Equal(decimal.NewFromInt(1)), "got %s", fine)

	// 36 hours late is two days.
	fine = RecomputeFine(StatusActive, due, decimal.Zero, testRate, due.Add(36*time.Hour))
	assert.True(t, fine.Equal(decimal.NewFromInt(2)), "got %s", fine)
}

func TestRecomputeFine_FullDays(t *testing.T) {
	fine := RecomputeFine(StatusOverdue, due, decimal.Zero, testRate, due.Add(5*24*time.Hour))
	assert.True(t, fine.Equal(decimal.NewFromInt(5)), "got %s", fine)
}

func TestRecomputeFine_Monotone(t *testing.T) {
	prev := decimal.Zero
	for hours := 0; hours <= 96; hours += 7 {
		fine := RecomputeFine(StatusActive, due, prev, testRate, due.Add(time.Duration(hours)*time.Hour))
		assert.True(t, fine.GreaterThanOrEqual(prev),
			"fine decreased at +%dh: %s < %s", hours, fine, prev)
		prev = fine
	}
}

func TestRecomputeFine_NeverBelowAssessed(t *testing.T) {
	assessed := decimal.NewFromInt(10)
	fine := RecomputeFine(StatusOverdue, due, assessed, testRate, due.Add(24*time.Hour))
	assert.True(t, fine.Equal(assessed))
}

func TestRecomputeFine_ReturnedKeepsFinalizedFine(t *testing.T) {
	assessed := decimal.NewFromInt(3)
	fine := RecomputeFine(StatusReturned, due, assessed, testRate, due.Add(100*24*time.Hour))
	assert.True(t, fine.Equal(assessed))
}

func TestFinalizeFine_FifteenDayLoan(t *testing.T) {
	// Borrowed with a 14-day period, returned on day 15: one day late.
	fine := FinalizeFine(due, decimal.Zero, testRate, due.Add(24*time.Hour))
	assert.True(t, fine.Equal(decimal.NewFromInt(1)), "got %s", fine)
}

func TestFinalizeFine_HigherRate(t *testing.T) {
	fine := FinalizeFine(due, decimal.Zero, 2, due.Add(3*24*time.Hour))
	assert.True(t, fine.Equal(decimal.NewFromInt(6)), "got %s", fine)
}
