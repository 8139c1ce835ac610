// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Ledger input errors. These are fatal: a ledger that cannot be
	// parsed completely produces no output at all.
	ErrMissingColumn = errors.New("missing required column")
	ErrBadDate       = errors.New("unparseable date")
	ErrBadPrice      = errors.New("unparseable price")

	// Blockchair errors.
	ErrBlockchairConnection = errors.New("blockchair connection failed")
	ErrBadResponse          = errors.New("malformed blockchair response")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsInputError reports whether err stems from an unparseable ledger file.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrBadDate) ||
		errors.Is(err, ErrBadPrice)
}
