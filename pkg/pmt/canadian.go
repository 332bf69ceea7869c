package pmt

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/period"
)

// Canadian computes payments with interest compounded semi-annually.
type Canadian struct {
	params
	periodRate   float64
	pmtUnrounded float64
}

var _ Calculator = Canadian{}

// NewCanadian validates the inputs and computes the payment. term is the number
// of months the monthly-equivalent annuity runs.
func NewCanadian(typ period.Type, loanAmount, rate float64, term int) (Canadian, error) {
	p := params{typ: typ, loanAmount: loanAmount, rate: rate, term: term}
	if err := p.validate(); err != nil {
		return Canadian{}, fmt.Errorf("canadian calculator: %w", err)
	}

	c := Canadian{params: p}
	c.periodRate = math.Pow(1+(rate/100)/2, 2/float64(typ.PmtsPerYear())) - 1
	c.pmtUnrounded = adjustForFrequency(canadianMonthlyPayment(loanAmount, rate, term), typ)
	return c, nil
}

func canadianMonthlyPayment(loanAmount, rate float64, term int) float64 {
	if rate == 0 {
		return loanAmount / float64(term)
	}
	const sixth = 1.0 / 6.0
	divInterest := rate / 200
	mthlyRate := math.Pow(1+(rate/100)/2, sixth) - 1
	return loanAmount * (mthlyRate / (1 - math.Pow(math.Pow(1+divInterest, sixth), -float64(term))))
}

func (c Canadian) Variant() Variant      { return VariantCanadian }
func (c Canadian) PeriodRate() float64   { return c.periodRate }
func (c Canadian) PmtUnrounded() float64 { return c.pmtUnrounded }
func (c Canadian) Pmt() decimal.Decimal  { return roundPmt(c.pmtUnrounded) }
func (c Canadian) sealed()               {}

func (c Canadian) WithLoanAmount(loanAmount float64) (Calculator, error) {
	return NewCanadian(c.typ, loanAmount, c.rate, c.term)
}

func (c Canadian) WithRate(rate float64) (Calculator, error) {
	return NewCanadian(c.typ, c.loanAmount, rate, c.term)
}

func (c Canadian) WithTerm(term int) (Calculator, error) {
	return NewCanadian(c.typ, c.loanAmount, c.rate, term)
}

func (c Canadian) WithPeriodType(typ period.Type) (Calculator, error) {
	return NewCanadian(typ, c.loanAmount, c.rate, c.term)
}
