package extra

import (
	"fmt"
	"math"

	"github.com/mcclellann/fredMortgage/pkg/errs"
	"github.com/mcclellann/fredMortgage/pkg/period"
)

// Definition describes a recurring or one-time extra payment: the same amount
// on every date of its calendar.
type Definition struct {
	calendar period.Calendar
	amount   float64
}

// NewDefinition validates that the calendar is set and amount is positive.
func NewDefinition(cal period.Calendar, amount float64) (Definition, error) {
	if cal.IsZero() {
		return Definition{}, fmt.Errorf("extra payment calendar must be set: %w", errs.ErrInvalidParameter)
	}
	if !(amount > 0) || math.IsInf(amount, 0) {
		return Definition{}, fmt.Errorf("extra payment amount must be greater than 0, got %v: %w", amount, errs.ErrInvalidParameter)
	}
	return Definition{calendar: cal, amount: amount}, nil
}

// Calendar returns the dates the amount is paid on.
func (d Definition) Calendar() period.Calendar { return d.calendar }

// Amount returns the extra amount paid on each date.
func (d Definition) Amount() float64 { return d.amount }

// IsZero reports whether d is the zero Definition.
func (d Definition) IsZero() bool { return d.calendar.IsZero() }

// WithCalendar returns a copy of d paid on cal.
func (d Definition) WithCalendar(cal period.Calendar) (Definition, error) {
	return NewDefinition(cal, d.amount)
}

// WithAmount returns a copy of d paying amount.
func (d Definition) WithAmount(amount float64) (Definition, error) {
	return NewDefinition(d.calendar, amount)
}
