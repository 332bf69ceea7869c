// Package amort builds the amortization ledger of a fixed-rate mortgage.
package amort

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/errs"
	"github.com/mcclellann/fredMortgage/pkg/extra"
	"github.com/mcclellann/fredMortgage/pkg/money"
	"github.com/mcclellann/fredMortgage/pkg/period"
	"github.com/mcclellann/fredMortgage/pkg/pmt"
)

// Ledger is the immutable, chronologically ordered schedule of payments.
type Ledger struct {
	calculator pmt.Calculator
	calendar   period.Calendar
	extras     extra.Set
	dates      []time.Time
	records    []Record
}

// Build folds the calculator, calendar and extra payments into a ledger.
//
// Each period charges interest on the unrounded balance, pays the unrounded
// base payment plus any extra payment, and never pays more than the balance
// plus interest. Only unrounded values are carried between periods. The fold
// stops once the balance rounds to 0.00 or the calendar runs out; in the latter
// case the ledger is returned with a residual balance and PaidOff reports false.
//
// A zero extra.Set means no extra payments. A non-zero set must have been built
// for cal.
func Build(calc pmt.Calculator, cal period.Calendar, extras extra.Set) (*Ledger, error) {
	if calc == nil {
		return nil, fmt.Errorf("payment calculator must be set: %w", errs.ErrInvalidParameter)
	}
	if cal.IsZero() {
		return nil, fmt.Errorf("payment calendar must be set: %w", errs.ErrInvalidParameter)
	}
	if !cal.Type().IsMortgagePeriod() {
		return nil, fmt.Errorf("calendar period %s is not a mortgage frequency: %w", cal.Type(), errs.ErrInvalidParameter)
	}
	if !extras.Calendar().IsZero() && !extras.Calendar().Equal(cal) {
		return nil, fmt.Errorf("extra payments were validated against %s, not %s: %w", extras.Calendar(), cal, errs.ErrUnknownDate)
	}

	rate := calc.PeriodRate()
	payment := calc.PmtUnrounded()
	dates := cal.Dates()

	l := &Ledger{
		calculator: calc,
		calendar:   cal,
		extras:     extras,
		dates:      make([]time.Time, 0, len(dates)),
		records:    make([]Record, 0, len(dates)),
	}

	owed := calc.LoanAmount()
	var paidInterest float64
	for _, d := range dates {
		if !money.Round2(owed).IsPositive() {
			break
		}
		r := nextRecord(owed, paidInterest, rate, payment, extras.Get(d))
		l.dates = append(l.dates, d)
		l.records = append(l.records, r)

		owed = r.balance
		paidInterest = r.cumulativeInterest
	}

	return l, nil
}

func nextRecord(owed, paidInterest, rate, payment, extraPrincipal float64) Record {
	interest := owed * rate
	total := math.Min(payment+extraPrincipal, owed+interest)
	principal := total - interest
	return Record{
		total:              total,
		principal:          principal,
		extraPrincipal:     extraPrincipal,
		interest:           interest,
		cumulativeInterest: paidInterest + interest,
		balance:            owed - principal,
	}
}

// Calculator returns the payment calculator the ledger was built from.
func (l *Ledger) Calculator() pmt.Calculator { return l.calculator }

// Calendar returns the mortgage calendar the ledger was built from.
func (l *Ledger) Calendar() period.Calendar { return l.calendar }

// Extras returns the extra payments applied.
func (l *Ledger) Extras() extra.Set { return l.extras }

// Len returns the number of periods until payoff.
func (l *Ledger) Len() int { return len(l.records) }

// At returns the date and record of period i, counting from 0.
func (l *Ledger) At(i int) (time.Time, Record) {
	return l.dates[i], l.records[i]
}

// Dates returns the due dates that have a record, in order.
func (l *Ledger) Dates() []time.Time { return slices.Clone(l.dates) }

// Records returns the records in chronological order.
func (l *Ledger) Records() []Record { return slices.Clone(l.records) }

// Lookup returns the record due on d.
func (l *Ledger) Lookup(d time.Time) (Record, bool) {
	i, found := slices.BinarySearchFunc(l.dates, period.Normalize(d), time.Time.Compare)
	if !found {
		return Record{}, false
	}
	return l.records[i], true
}

// All iterates over the ledger in chronological order.
func (l *Ledger) All() iter.Seq2[time.Time, Record] {
	return func(yield func(time.Time, Record) bool) {
		for i, d := range l.dates {
			if !yield(d, l.records[i]) {
				return
			}
		}
	}
}

// Last returns the final period. ok is false for an empty ledger.
func (l *Ledger) Last() (d time.Time, r Record, ok bool) {
	if len(l.records) == 0 {
		return time.Time{}, Record{}, false
	}
	n := len(l.records) - 1
	return l.dates[n], l.records[n], true
}

// PaidOff reports whether the final rounded balance is 0.00.
func (l *Ledger) PaidOff() bool {
	_, last, ok := l.Last()
	if !ok {
		return !money.Round2(l.calculator.LoanAmount()).IsPositive()
	}
	return last.Balance().IsZero()
}

// Summary aggregates a ledger for reporting.
type Summary struct {
	Periods       int
	PayoffDate    time.Time
	Payment       decimal.Decimal
	TotalInterest decimal.Decimal
	TotalExtra    decimal.Decimal
	TotalPaid     decimal.Decimal
	TotalCost     decimal.Decimal
	Residual      decimal.Decimal
	PaidOff       bool
}

// Summary computes the totals of the ledger.
func (l *Ledger) Summary() Summary {
	var paid, extraPaid float64
	for _, r := range l.records {
		paid += r.total
		extraPaid += r.extraPrincipal
	}

	s := Summary{
		Periods:    len(l.records),
		Payment:    l.calculator.Pmt(),
		TotalExtra: money.Round2(extraPaid),
		TotalPaid:  money.Round2(paid),
		PaidOff:    l.PaidOff(),
	}
	if d, last, ok := l.Last(); ok {
		s.PayoffDate = d
		s.TotalInterest = last.CumulativeInterest()
		s.Residual = last.Balance()
	} else {
		s.Residual = money.Round2(l.calculator.LoanAmount())
	}
	s.TotalCost = money.Round2(l.calculator.LoanAmount()).Add(s.TotalInterest)
	return s
}

// Compare orders ledgers by total cost (loan amount plus interest), then by
// number of periods. It returns -1, 0 or +1.
func Compare(a, b *Ledger) int {
	if c := a.Summary().TotalCost.Cmp(b.Summary().TotalCost); c != 0 {
		return c
	}
	switch {
	case a.Len() < b.Len():
		return -1
	case a.Len() > b.Len():
		return 1
	default:
		return 0
	}
}
