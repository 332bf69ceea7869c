package pmt

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/period"
)

// US computes payments with monthly compounding at rate/12.
type US struct {
	params
	periodRate   float64
	pmtUnrounded float64
}

var _ Calculator = US{}

// NewUS validates the inputs and computes the payment. term is the number of
// months the monthly-equivalent annuity runs.
func NewUS(typ period.Type, loanAmount, rate float64, term int) (US, error) {
	p := params{typ: typ, loanAmount: loanAmount, rate: rate, term: term}
	if err := p.validate(); err != nil {
		return US{}, fmt.Errorf("us calculator: %w", err)
	}

	c := US{params: p}
	c.periodRate = (rate / float64(typ.PmtsPerYear())) / 100
	c.pmtUnrounded = adjustForFrequency(usMonthlyPayment(loanAmount, rate, term), typ)
	return c, nil
}

func usMonthlyPayment(loanAmount, rate float64, term int) float64 {
	if rate == 0 {
		return loanAmount / float64(term)
	}
	m := rate / 1200
	return loanAmount * (m / (1 - math.Pow(1+m, -float64(term))))
}

func (c US) Variant() Variant      { return VariantUS }
func (c US) PeriodRate() float64   { return c.periodRate }
func (c US) PmtUnrounded() float64 { return c.pmtUnrounded }
func (c US) Pmt() decimal.Decimal  { return roundPmt(c.pmtUnrounded) }
func (c US) sealed()               {}

func (c US) WithLoanAmount(loanAmount float64) (Calculator, error) {
	return NewUS(c.typ, loanAmount, c.rate, c.term)
}

func (c US) WithRate(rate float64) (Calculator, error) {
	return NewUS(c.typ, c.loanAmount, rate, c.term)
}

func (c US) WithTerm(term int) (Calculator, error) {
	return NewUS(c.typ, c.loanAmount, c.rate, term)
}

func (c US) WithPeriodType(typ period.Type) (Calculator, error) {
	return NewUS(typ, c.loanAmount, c.rate, c.term)
}
