package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func loanDue(due time.Time, status string, renewals int) *Transaction {
	return &Transaction{
		Status:       status,
		DueDate:      due,
		RenewalCount: renewals,
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		due    time.Time
		want   string
	}{
		{"active before due", StatusActive, now.Add(time.Hour), StatusActive},
		{"active past due is overdue", StatusActive, now.Add(-time.Hour), StatusOverdue},
		{"renewed before due", StatusRenewed, now.Add(time.Hour), StatusRenewed},
		{"renewed past due is overdue", StatusRenewed, now.Add(-time.Minute), StatusOverdue},
		{"overdue stays overdue", StatusOverdue, now.Add(time.Hour), StatusOverdue},
		{"returned stays returned", StatusReturned, now.Add(-time.Hour), StatusReturned},
		{"due exactly now is not yet overdue", StatusActive, now, StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := loanDue(tt.due, tt.status, 0)
			assert.Equal(t, tt.want, loan.EffectiveStatus(now))
		})
	}
}

func TestCanRenew(t *testing.T) {
	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, loanDue(future, StatusActive, 0).CanRenew(3, now))
	assert.True(t, loanDue(future, StatusRenewed, 2).CanRenew(3, now))

	assert.False(t, loanDue(future, StatusActive, 3).CanRenew(3, now), "at the limit")
	assert.False(t, loanDue(past, StatusActive, 0).CanRenew(3, now), "past due")
	assert.False(t, loanDue(future, StatusOverdue, 0).CanRenew(3, now))
	assert.False(t, loanDue(future, StatusReturned, 0).CanRenew(3, now))
}

func TestTerminalState(t *testing.T) {
	assert.True(t, loanDue(time.Time{}, StatusReturned, 0).IsTerminal())
	assert.False(t, loanDue(time.Time{}, StatusActive, 0).IsTerminal())
	assert.False(t, loanDue(time.Time{}, StatusOverdue, 0).IsTerminal())
	assert.True(t, loanDue(time.Time{}, StatusOverdue, 0).IsOpen())
}
