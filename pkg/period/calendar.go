package period

import (
	"fmt"
	"slices"
	"time"

	"github.com/mcclellann/fredMortgage/pkg/errs"
)

// Calendar is an immutable, ordered sequence of due dates. Dates()[0] is the
// first date and each following date is one increment of the period type later.
type Calendar struct {
	typ   Type
	first time.Time
	count int
	dates []time.Time
}

// New builds a calendar of count dates starting at first.
func New(typ Type, first time.Time, count int) (Calendar, error) {
	if !typ.Valid() {
		return Calendar{}, fmt.Errorf("period type must be set: %w", errs.ErrInvalidParameter)
	}
	if first.IsZero() {
		return Calendar{}, fmt.Errorf("first date must be set: %w", errs.ErrInvalidParameter)
	}
	if count <= 0 {
		return Calendar{}, fmt.Errorf("count must be greater than 0, got %d: %w", count, errs.ErrInvalidParameter)
	}
	if typ == OneTime && count != 1 {
		return Calendar{}, fmt.Errorf("count must be 1 for %s, got %d: %w", OneTime, count, errs.ErrInvalidParameter)
	}

	first = Normalize(first)
	dates := make([]time.Time, count)
	dates[0] = first
	for i := 1; i < count; i++ {
		dates[i] = AddPeriod(typ, dates[i-1])
	}

	return Calendar{typ: typ, first: first, count: count, dates: dates}, nil
}

// ForYears builds a calendar covering the given number of years of typ payments.
func ForYears(typ Type, first time.Time, years int) (Calendar, error) {
	if years <= 0 {
		return Calendar{}, fmt.Errorf("years must be greater than 0, got %d: %w", years, errs.ErrInvalidParameter)
	}
	return New(typ, first, CountFromYears(typ, years))
}

// Type returns the period type.
func (c Calendar) Type() Type { return c.typ }

// First returns the first due date.
func (c Calendar) First() time.Time { return c.first }

// Count returns the number of dates.
func (c Calendar) Count() int { return c.count }

// Last returns the final due date, or the zero time for an empty calendar.
func (c Calendar) Last() time.Time {
	if len(c.dates) == 0 {
		return time.Time{}
	}
	return c.dates[len(c.dates)-1]
}

// Dates returns a copy of the ordered due dates.
func (c Calendar) Dates() []time.Time {
	return slices.Clone(c.dates)
}

// Contains reports whether d is one of the calendar's due dates.
func (c Calendar) Contains(d time.Time) bool {
	_, found := slices.BinarySearchFunc(c.dates, Normalize(d), time.Time.Compare)
	return found
}

// IsZero reports whether c is the zero Calendar.
func (c Calendar) IsZero() bool { return c.count == 0 }

// Equal reports value equality: same type, first date and count.
// The dates are derived from those three fields.
func (c Calendar) Equal(other Calendar) bool {
	return c.typ == other.typ && c.first.Equal(other.first) && c.count == other.count
}

// WithType returns a new calendar recomputed for typ.
func (c Calendar) WithType(typ Type) (Calendar, error) {
	return New(typ, c.first, c.count)
}

// WithFirstDate returns a new calendar recomputed from first.
func (c Calendar) WithFirstDate(first time.Time) (Calendar, error) {
	return New(c.typ, first, c.count)
}

// WithCount returns a new calendar recomputed with count dates.
func (c Calendar) WithCount(count int) (Calendar, error) {
	return New(c.typ, c.first, count)
}

// String renders the calendar for logs.
func (c Calendar) String() string {
	if c.IsZero() {
		return "Calendar{}"
	}
	return fmt.Sprintf("Calendar{%s from %s x%d}", c.typ, c.first.Format(DateLayout), c.count)
}
