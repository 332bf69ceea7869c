// Package errs holds the error taxonomy shared by the amortization packages.
// Callers match with errors.Is; every returned error wraps exactly one of these.
package errs

import "errors"

var (
	// ErrInvalidParameter reports an absent or out-of-range constructor argument.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrIncompatiblePeriod reports an extra-payment period type that is not
	// allowed for the mortgage's period type.
	ErrIncompatiblePeriod = errors.New("incompatible payment period")

	// ErrUnknownDate reports a date that is not a due date of the mortgage calendar,
	// or a removal of a date with no extra payment.
	ErrUnknownDate = errors.New("unknown payment date")

	// ErrEmptyOperation reports remove or clear on an empty extra-payment set.
	ErrEmptyOperation = errors.New("operation on empty extra payments")
)
