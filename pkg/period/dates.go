package period

import (
	"fmt"
	"time"

	"github.com/mcclellann/fredMortgage/pkg/errs"
)

// DateLayout is the wire and storage format of due dates.
const DateLayout = "2006-01-02"

// Date builds a due date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the clock and location of t, keeping its calendar day.
// All dates handled by this module are normalized so they compare with ==
// and can key maps.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, errs.ErrInvalidParameter)
	}
	return Normalize(t), nil
}

// AddPeriod advances t by one increment of typ. OneTime returns t unchanged.
func AddPeriod(typ Type, t time.Time) time.Time {
	step := types[typ].step
	t = Normalize(t)
	if step.weeks != 0 {
		t = t.AddDate(0, 0, 7*step.weeks)
	}
	if step.months != 0 || step.years != 0 {
		t = addMonths(t, 12*step.years+step.months)
	}
	return t
}

// addMonths behaves like a spreadsheet EDATE: the day is clamped to the end of
// the target month instead of overflowing into the next one.
func addMonths(t time.Time, months int) time.Time {
	first := Date(t.Year(), t.Month(), 1).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return Date(first.Year(), first.Month(), day)
}

// FirstDueDate returns the first payment due date of a mortgage starting on
// start: one increment of typ later.
func FirstDueDate(typ Type, start time.Time) (time.Time, error) {
	if !typ.Valid() {
		return time.Time{}, fmt.Errorf("period type must be set: %w", errs.ErrInvalidParameter)
	}
	if start.IsZero() {
		return time.Time{}, fmt.Errorf("start date must be set: %w", errs.ErrInvalidParameter)
	}
	return AddPeriod(typ, start), nil
}

// CountFromYears returns the number of payments of typ in the given years.
// Types without a fixed yearly count (OneTime and the yearly extra-payment
// variants) yield 1.
func CountFromYears(typ Type, years int) int {
	switch typ {
	case Yearly:
		return years
	case Monthly:
		return years * 12
	case Weekly, RapidWeekly:
		return years * 52
	case Biweekly, RapidBiweekly:
		return years * 26
	default:
		return 1
	}
}

// CountFromMonths returns the number of payments of typ needed to cover a term
// stated in months, rounding partial periods up.
func CountFromMonths(typ Type, months int) int {
	switch typ {
	case Monthly:
		return months
	case Weekly, RapidWeekly, Biweekly, RapidBiweekly, Yearly:
		per := typ.PmtsPerYear()
		return (months*per + 11) / 12
	default:
		return 1
	}
}
