package model

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")

	// Issue preconditions
	ErrBookUnavailable = errors.New("no copies of this book are available")
	ErrBorrowerOverdue = errors.New("borrower has overdue transactions")
	ErrBorrowCapReached = errors.New("borrower has reached the maximum number of open loans")

	// Return / renew state conflicts
	ErrAlreadyReturned   = errors.New("transaction has already been returned")
	ErrRenewalLimit      = errors.New("renewal limit reached")
	ErrNotRenewable      = errors.New("transaction is not in a renewable state")
	ErrRenewWhileOverdue = errors.New("overdue transactions cannot be renewed")

	// Ownership
	ErrNotTransactionOwner = errors.New("transaction belongs to another user")
)
