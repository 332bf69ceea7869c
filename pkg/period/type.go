// Package period defines payment frequencies and the due-date calendars built
// from them.
package period

import (
	"fmt"
	"strings"

	"github.com/mcclellann/fredMortgage/pkg/errs"
)

// Type is a payment frequency. The zero value is not a valid Type.
type Type int

const (
	Weekly Type = iota + 1
	RapidWeekly
	Biweekly
	RapidBiweekly
	Monthly
	Yearly
	YearlyForWeekly
	YearlyForBiweekly
	OneTime
)

// increment is the calendar step between two consecutive dates of a Type.
type increment struct {
	weeks  int
	months int
	years  int
}

type typeInfo struct {
	name        string
	step        increment
	pmtsPerYear int
}

var types = map[Type]typeInfo{
	Weekly:            {"WEEKLY", increment{weeks: 1}, 52},
	RapidWeekly:       {"RAPID_WEEKLY", increment{weeks: 1}, 52},
	Biweekly:          {"BIWEEKLY", increment{weeks: 2}, 26},
	RapidBiweekly:     {"RAPID_BIWEEKLY", increment{weeks: 2}, 26},
	Monthly:           {"MONTHLY", increment{months: 1}, 12},
	Yearly:            {"YEARLY", increment{years: 1}, 1},
	YearlyForWeekly:   {"YEARLY_FOR_WEEKLY", increment{weeks: 52}, 1},
	YearlyForBiweekly: {"YEARLY_FOR_BIWEEKLY", increment{weeks: 26}, 1},
	OneTime:           {"ONETIME", increment{}, 0},
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	_, ok := types[t]
	return ok
}

// PmtsPerYear returns how many payments of this type fall in one year.
// OneTime returns 0.
func (t Type) PmtsPerYear() int {
	return types[t].pmtsPerYear
}

// IsMortgagePeriod reports whether t may be used as the payment frequency of a
// mortgage. The yearly and one-time types only describe extra payments.
func (t Type) IsMortgagePeriod() bool {
	switch t {
	case Weekly, RapidWeekly, Biweekly, RapidBiweekly, Monthly:
		return true
	default:
		return false
	}
}

// String returns the upper-case name used in JSON and storage.
func (t Type) String() string {
	if info, ok := types[t]; ok {
		return info.name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType is the inverse of String. Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t, info := range types {
		if info.name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown period type %q: %w", s, errs.ErrInvalidParameter)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal %s: %w", t, errs.ErrInvalidParameter)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
