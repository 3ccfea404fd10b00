package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrGateway     = errors.New("payment gateway error")
	ErrPersistence = errors.New("persistence error")

	ErrIllegalTransition = fmt.Errorf("%w: illegal status transition", ErrConflict)
	ErrAmountMismatch    = fmt.Errorf("%w: paid amount does not match booking total", ErrConflict)
	ErrDateConflict      = fmt.Errorf("%w: property already booked for the requested dates", ErrConflict)
)

// IsPermanent reports whether retrying the operation cannot change its outcome.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrForbidden)
}
