package amort

import (
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/money"
)

// Record is one period of the ledger. Unrounded values are the ones carried
// from period to period; the rounded values are for presentation only.
type Record struct {
	total              float64
	principal          float64
	extraPrincipal     float64
	interest           float64
	cumulativeInterest float64
	balance            float64
}

func (r Record) TotalUnrounded() float64              { return r.total }
func (r Record) PrincipalUnrounded() float64          { return r.principal }
func (r Record) ExtraPrincipalUnrounded() float64     { return r.extraPrincipal }
func (r Record) InterestUnrounded() float64           { return r.interest }
func (r Record) CumulativeInterestUnrounded() float64 { return r.cumulativeInterest }
func (r Record) BalanceUnrounded() float64            { return r.balance }

// Total is the amount paid this period, extra principal included.
func (r Record) Total() decimal.Decimal { return money.Round2(r.total) }

// Principal is the part of Total applied to principal, extra principal included.
func (r Record) Principal() decimal.Decimal { return money.Round2(r.principal) }

// ExtraPrincipal is the extra payment scheduled for this period.
func (r Record) ExtraPrincipal() decimal.Decimal { return money.Round2(r.extraPrincipal) }

// Interest is the interest charged this period.
func (r Record) Interest() decimal.Decimal { return money.Round2(r.interest) }

// CumulativeInterest is the interest paid up to and including this period.
func (r Record) CumulativeInterest() decimal.Decimal { return money.Round2(r.cumulativeInterest) }

// Balance is the principal still owed after this period.
func (r Record) Balance() decimal.Decimal { return money.Round2(r.balance) }

// Stat indexes the values returned by Stats.
type Stat int

const (
	StatTotal Stat = iota
	StatPrincipal
	StatExtraPrincipal
	StatInterest
	StatCumulativeInterest
	StatBalance
)

// Stats returns the rounded values in Stat order.
func (r Record) Stats() [6]decimal.Decimal {
	return [6]decimal.Decimal{
		StatTotal:              r.Total(),
		StatPrincipal:          r.Principal(),
		StatExtraPrincipal:     r.ExtraPrincipal(),
		StatInterest:           r.Interest(),
		StatCumulativeInterest: r.CumulativeInterest(),
		StatBalance:            r.Balance(),
	}
}
