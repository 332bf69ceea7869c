// Package extra validates and merges extra principal payments against a
// mortgage's due-date calendar.
package extra

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/mcclellann/fredMortgage/pkg/errs"
	"github.com/mcclellann/fredMortgage/pkg/period"
)

// allowed is the compatibility matrix: mortgage period -> extra-payment periods.
var allowed = map[period.Type][]period.Type{
	period.Monthly:       {period.Monthly, period.Yearly, period.OneTime},
	period.Biweekly:      {period.Biweekly, period.RapidBiweekly, period.YearlyForBiweekly, period.OneTime},
	period.RapidBiweekly: {period.Biweekly, period.RapidBiweekly, period.YearlyForBiweekly, period.OneTime},
	period.Weekly:        {period.Weekly, period.RapidWeekly, period.YearlyForWeekly, period.OneTime},
	period.RapidWeekly:   {period.Weekly, period.RapidWeekly, period.YearlyForWeekly, period.OneTime},
}

// Compatible reports whether extra payments recurring on extraType may be
// applied to a mortgage paid on mortgageType.
func Compatible(mortgageType, extraType period.Type) bool {
	return slices.Contains(allowed[mortgageType], extraType)
}

// Set is an immutable mapping from due date to extra principal amount. Every
// date is a due date of the mortgage calendar the set was built for and every
// amount is positive. Operations return a new Set and leave the receiver as is;
// a failing operation changes nothing.
type Set struct {
	calendar period.Calendar
	amounts  map[time.Time]float64
}

// NewSet returns an empty set bound to the mortgage calendar.
func NewSet(mortgage period.Calendar) (Set, error) {
	if mortgage.IsZero() {
		return Set{}, fmt.Errorf("mortgage calendar must be set: %w", errs.ErrInvalidParameter)
	}
	return Set{calendar: mortgage, amounts: map[time.Time]float64{}}, nil
}

// FromDefinition expands def into a set for the mortgage calendar.
func FromDefinition(def Definition, mortgage period.Calendar) (Set, error) {
	s, err := NewSet(mortgage)
	if err != nil {
		return Set{}, err
	}
	return s.SetDefinition(def)
}

// Calendar returns the mortgage calendar the set validates against.
func (s Set) Calendar() period.Calendar { return s.calendar }

// Len returns the number of dates with an extra payment.
func (s Set) Len() int { return len(s.amounts) }

// IsEmpty reports whether no extra payments are recorded.
func (s Set) IsEmpty() bool { return len(s.amounts) == 0 }

// Get returns the extra payment due on d, or 0 when there is none.
func (s Set) Get(d time.Time) float64 {
	return s.amounts[period.Normalize(d)]
}

// Lookup returns the extra payment due on d and whether one is recorded.
func (s Set) Lookup(d time.Time) (float64, bool) {
	v, ok := s.amounts[period.Normalize(d)]
	return v, ok
}

// Dates returns the dates with an extra payment in chronological order.
func (s Set) Dates() []time.Time {
	return slices.SortedFunc(maps.Keys(s.amounts), time.Time.Compare)
}

// Entries returns a copy of the date -> amount mapping.
func (s Set) Entries() map[time.Time]float64 {
	return maps.Clone(s.amounts)
}

// Total returns the sum of all extra payments.
func (s Set) Total() float64 {
	var total float64
	for _, d := range s.Dates() {
		total += s.amounts[d]
	}
	return total
}

// Set returns a set where each entry replaces any existing amount for its date.
func (s Set) Set(entries map[time.Time]float64) (Set, error) {
	return s.merge(entries, false)
}

// Add returns a set where each entry is added onto any existing amount for its
// date.
func (s Set) Add(entries map[time.Time]float64) (Set, error) {
	return s.merge(entries, true)
}

// SetDefinition expands def and merges it with overwrite semantics.
func (s Set) SetDefinition(def Definition) (Set, error) {
	entries, err := s.expand(def)
	if err != nil {
		return Set{}, err
	}
	return s.merge(entries, false)
}

// AddDefinition expands def and merges it with additive semantics.
func (s Set) AddDefinition(def Definition) (Set, error) {
	entries, err := s.expand(def)
	if err != nil {
		return Set{}, err
	}
	return s.merge(entries, true)
}

// Remove returns a set without the given dates. It fails if the set is empty or
// if any date has no entry.
func (s Set) Remove(dates ...time.Time) (Set, error) {
	if s.IsEmpty() {
		return Set{}, fmt.Errorf("remove: %w", errs.ErrEmptyOperation)
	}
	next := s.clone()
	for _, d := range dates {
		d = period.Normalize(d)
		if _, ok := next.amounts[d]; !ok {
			return Set{}, fmt.Errorf("remove %s: no extra payment recorded: %w", d.Format(period.DateLayout), errs.ErrUnknownDate)
		}
		delete(next.amounts, d)
	}
	return next, nil
}

// Clear returns an empty set for the same calendar. It fails if the set is
// already empty.
func (s Set) Clear() (Set, error) {
	if s.IsEmpty() {
		return Set{}, fmt.Errorf("clear: %w", errs.ErrEmptyOperation)
	}
	return NewSet(s.calendar)
}

// Equal reports whether both sets share a calendar and hold the same entries.
func (s Set) Equal(other Set) bool {
	return s.calendar.Equal(other.calendar) && maps.Equal(s.amounts, other.amounts)
}

func (s Set) expand(def Definition) (map[time.Time]float64, error) {
	if def.IsZero() {
		return nil, fmt.Errorf("extra payment definition must be set: %w", errs.ErrInvalidParameter)
	}
	mortgageType := s.calendar.Type()
	extraType := def.Calendar().Type()
	if !Compatible(mortgageType, extraType) {
		return nil, fmt.Errorf("extra payment period %s is invalid for a mortgage payment period of %s: %w", extraType, mortgageType, errs.ErrIncompatiblePeriod)
	}

	entries := make(map[time.Time]float64, def.Calendar().Count())
	for _, d := range def.Calendar().Dates() {
		entries[d] = def.Amount()
	}
	return entries, nil
}

// merge validates every entry before touching anything so a bad entry aborts
// the whole batch.
func (s Set) merge(entries map[time.Time]float64, add bool) (Set, error) {
	if s.calendar.IsZero() {
		return Set{}, fmt.Errorf("extra payments have no mortgage calendar: %w", errs.ErrInvalidParameter)
	}
	normalized := make(map[time.Time]float64, len(entries))
	for d, amount := range entries {
		if d.IsZero() {
			return Set{}, fmt.Errorf("extra payment date must be set: %w", errs.ErrInvalidParameter)
		}
		if !(amount > 0) || math.IsInf(amount, 0) {
			return Set{}, fmt.Errorf("extra payment on %s must be greater than 0, got %v: %w", d.Format(period.DateLayout), amount, errs.ErrInvalidParameter)
		}
		if !s.calendar.Contains(d) {
			return Set{}, fmt.Errorf("%s is not a payment date of this mortgage: %w", d.Format(period.DateLayout), errs.ErrUnknownDate)
		}
		normalized[period.Normalize(d)] += amount
	}

	next := s.clone()
	for d, amount := range normalized {
		if add {
			next.amounts[d] += amount
		} else {
			next.amounts[d] = amount
		}
	}
	return next, nil
}

func (s Set) clone() Set {
	amounts := maps.Clone(s.amounts)
	if amounts == nil {
		amounts = map[time.Time]float64{}
	}
	return Set{calendar: s.calendar, amounts: amounts}
}
