package models

import "errors"

var (
	// ErrNotFound covers a missing loan, plan, installment, deposit or
	// withdrawal reference.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers malformed input: non-positive amounts, empty
	// rejection reasons, insufficient withdrawal funds.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is surfaced only after the transaction layer exhausts its
	// retries on a contended balance mutation.
	ErrConflict = errors.New("transaction conflict")
	// ErrRemote wraps opaque store/network failures.
	ErrRemote = errors.New("store unavailable")
)
