package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record referenced by id does not exist.
var ErrNotFound = errors.New("not found")

// ErrLedgerInconsistent means the stored chain is in a state that the
// incremental cascade cannot repair; the ledger must be rebuilt.
var ErrLedgerInconsistent = errors.New("ledger inconsistent, run rebuild")

// Validation codes.
const (
	CodeFutureDate          = "future_date"
	CodeBlankLabel          = "blank_label"
	CodeNonPositiveAmount   = "non_positive_amount"
	CodeInsufficientBalance = "insufficient_balance"
	CodeNoFreezes           = "no_freezes"
	CodeMaxFreezes          = "max_freezes"
	CodeAlreadyFrozen       = "already_frozen"
	CodeInvalidRate         = "invalid_rate"
	CodeInvalidFreezeCount  = "invalid_freeze_count"
	CodeInvalidDate         = "invalid_date"
	CodeInvalidBody         = "invalid_body"
)

// ValidationError is a recoverable rejection of bad input.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError and
// returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
