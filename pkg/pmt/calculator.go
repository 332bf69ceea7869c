// Package pmt computes the fixed periodic payment of a mortgage.
//
// Two conventions are provided. US compounds monthly at rate/12. Canadian
// compounds semi-annually, as Canadian lenders are required to quote. Both
// share validation and frequency adjustment and differ only in the per-period
// rate and the base monthly payment.
package pmt

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/errs"
	"github.com/mcclellann/fredMortgage/pkg/money"
	"github.com/mcclellann/fredMortgage/pkg/period"
)

// Variant names a payment convention.
type Variant string

const (
	VariantUS       Variant = "us"
	VariantCanadian Variant = "canadian"
)

// ParseVariant accepts "us" or "canadian" in any case.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case VariantUS, VariantCanadian:
		return v, nil
	default:
		return "", fmt.Errorf("unknown calculator variant %q: %w", s, errs.ErrInvalidParameter)
	}
}

// Calculator is an immutable payment calculation. The With methods never
// modify the receiver; they validate and recompute a new Calculator.
//
// The interface is closed: US and Canadian are the only implementations.
type Calculator interface {
	Variant() Variant
	LoanAmount() float64
	Rate() float64
	PeriodType() period.Type
	Term() int

	// PeriodRate is the interest rate applied once per payment period.
	PeriodRate() float64
	// PmtUnrounded is the full-precision periodic payment used by the ledger.
	PmtUnrounded() float64
	// Pmt is PmtUnrounded rounded half-to-even to cents, as quoted to the borrower.
	Pmt() decimal.Decimal

	WithLoanAmount(loanAmount float64) (Calculator, error)
	WithRate(rate float64) (Calculator, error)
	WithTerm(term int) (Calculator, error)
	WithPeriodType(typ period.Type) (Calculator, error)

	sealed()
}

// New builds a calculator of the given variant.
func New(v Variant, typ period.Type, loanAmount, rate float64, term int) (Calculator, error) {
	switch v {
	case VariantUS:
		return NewUS(typ, loanAmount, rate, term)
	case VariantCanadian:
		return NewCanadian(typ, loanAmount, rate, term)
	default:
		return nil, fmt.Errorf("unknown calculator variant %q: %w", v, errs.ErrInvalidParameter)
	}
}

// Equal reports whether a and b are the same variant with identical inputs.
// Derived values follow from the inputs.
func Equal(a, b Calculator) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Variant() == b.Variant() &&
		a.PeriodType() == b.PeriodType() &&
		a.LoanAmount() == b.LoanAmount() &&
		a.Rate() == b.Rate() &&
		a.Term() == b.Term()
}

// params are the user-supplied inputs common to both variants.
type params struct {
	typ        period.Type
	loanAmount float64
	rate       float64
	term       int
}

func (p params) validate() error {
	if !p.typ.Valid() {
		return fmt.Errorf("period type must be set: %w", errs.ErrInvalidParameter)
	}
	if !p.typ.IsMortgagePeriod() {
		return fmt.Errorf("period type %s is not a mortgage frequency; use WEEKLY, RAPID_WEEKLY, BIWEEKLY, RAPID_BIWEEKLY or MONTHLY: %w", p.typ, errs.ErrInvalidParameter)
	}
	if !(p.loanAmount > 0) || math.IsInf(p.loanAmount, 0) {
		return fmt.Errorf("loan amount must be greater than 0, got %v: %w", p.loanAmount, errs.ErrInvalidParameter)
	}
	if !(p.rate >= 0 && p.rate <= 100) {
		return fmt.Errorf("interest rate must be between 0 and 100, got %v: %w", p.rate, errs.ErrInvalidParameter)
	}
	if p.term <= 0 {
		return fmt.Errorf("term must be greater than 0, got %d: %w", p.term, errs.ErrInvalidParameter)
	}
	return nil
}

func (p params) PeriodType() period.Type { return p.typ }
func (p params) LoanAmount() float64     { return p.loanAmount }
func (p params) Rate() float64           { return p.rate }
func (p params) Term() int               { return p.term }

// adjustForFrequency converts a monthly payment into the payment of the
// configured frequency. Rapid schedules split the monthly payment so that the
// extra instalments in a year accelerate payoff.
func adjustForFrequency(monthly float64, typ period.Type) float64 {
	switch typ {
	case period.Weekly, period.Biweekly:
		return monthly * 12 / float64(typ.PmtsPerYear())
	case period.RapidBiweekly:
		return monthly / 2
	case period.RapidWeekly:
		return monthly / 4
	default:
		return monthly
	}
}

func roundPmt(unrounded float64) decimal.Decimal {
	return money.RoundExact(unrounded)
}
