package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/period"
	"github.com/mcclellann/fredMortgage/pkg/pmt"
)

// Date is a calendar date at UTC midnight. It marshals as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate normalises t to its calendar date.
func NewDate(t time.Time) Date {
	return Date{period.Normalize(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(period.DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := period.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string { return d.Format(period.DateLayout) }

// Mortgage is a saved mortgage scenario: the inputs of a payment calculator
// and the start date from which its payment calendar is derived.
type Mortgage struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Variant      pmt.Variant     `json:"variant"` // "us" or "canadian"
	Period       period.Type     `json:"period"`  // Payment frequency
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	InterestRate decimal.Decimal `json:"interest_rate"` // Annual percentage, e.g. 4.25
	TermMonths   int             `json:"term_months"`
	StartDate    Date            `json:"start_date"` // First payment falls one period later
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ExtraPayment is an additional principal payment on a due date of a mortgage.
type ExtraPayment struct {
	MortgageID uuid.UUID       `json:"mortgage_id"`
	DueDate    Date            `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
}

// ScheduleEntry is one period of an amortization schedule, rounded for display.
type ScheduleEntry struct {
	Number             int             `json:"number"`
	DueDate            Date            `json:"due_date"`
	Total              decimal.Decimal `json:"total"`
	Principal          decimal.Decimal `json:"principal"`
	ExtraPrincipal     decimal.Decimal `json:"extra_principal"`
	Interest           decimal.Decimal `json:"interest"`
	CumulativeInterest decimal.Decimal `json:"cumulative_interest"`
	Balance            decimal.Decimal `json:"balance"`
}

// Schedule is the amortization schedule of a mortgage with its totals.
type Schedule struct {
	MortgageID    uuid.UUID       `json:"mortgage_id"`
	Payment       decimal.Decimal `json:"payment"`
	Periods       int             `json:"periods"`
	PayoffDate    Date            `json:"payoff_date"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalExtra    decimal.Decimal `json:"total_extra"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Residual      decimal.Decimal `json:"residual"`
	PaidOff       bool            `json:"paid_off"`
	Entries       []ScheduleEntry `json:"entries"`
}

// Quote is the periodic payment for a set of calculator inputs.
type Quote struct {
	Variant      pmt.Variant     `json:"variant"`
	Period       period.Type     `json:"period"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
	PeriodRate   float64         `json:"period_rate"`
	Payment      decimal.Decimal `json:"payment"`
}
