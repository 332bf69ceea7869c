// Package planner manages saved mortgage scenarios. It validates their terms,
// persists them with their extra payments and builds amortization schedules,
// caching each schedule under a hash of the inputs that produced it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcclellann/fredMortgage/pkg/cache"
	"github.com/mcclellann/fredMortgage/pkg/errs"
	"github.com/mcclellann/fredMortgage/pkg/models"
	"github.com/mcclellann/fredMortgage/pkg/observability"
	"github.com/mcclellann/fredMortgage/pkg/period"
	"github.com/mcclellann/fredMortgage/pkg/pmt"
	"github.com/mcclellann/fredMortgage/pkg/store"
)

// Limits bound the inputs accepted for new or updated scenarios.
type Limits struct {
	MaxLoanAmount float64
	MaxTermMonths int
}

// DefaultLimits are used unless WithLimits is given.
var DefaultLimits = Limits{MaxLoanAmount: 1e9, MaxTermMonths: 600}

// Planner handles the business logic for mortgage scenarios.
type Planner struct {
	storage  store.Storage
	cache    cache.Cache // nil disables schedule caching
	cacheTTL time.Duration
	limits   Limits
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithCache enables schedule caching in c with the given expiry.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Planner) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

func WithLimits(l Limits) Option {
	return func(p *Planner) { p.limits = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Planner) { p.tracer = t }
}

// NewPlanner creates a new Planner with a given Storage implementation.
func NewPlanner(s store.Storage, opts ...Option) *Planner {
	p := &Planner{
		storage: s,
		limits:  DefaultLimits,
		logger:  slog.Default(),
		tracer:  observability.Tracer("github.com/mcclellann/fredMortgage/pkg/planner"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MortgageInput holds the user-supplied terms of a scenario.
type MortgageInput struct {
	Name         string          `json:"name"`
	Variant      pmt.Variant     `json:"variant"`
	Period       period.Type     `json:"period"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
	StartDate    models.Date     `json:"start_date"`
}

// terms are the calculator and payment calendar of a validated scenario.
type terms struct {
	calc pmt.Calculator
	cal  period.Calendar
}

// CreateMortgage validates and stores a new scenario.
func (p *Planner) CreateMortgage(ctx context.Context, in MortgageInput) (*models.Mortgage, error) {
	_, span := p.tracer.Start(ctx, "planner.CreateMortgage")
	defer span.End()

	if _, err := p.validate(in); err != nil {
		return nil, p.fail(span, "create", err)
	}

	now := p.now()
	m := &models.Mortgage{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(m, in)

	if err := p.storage.CreateMortgage(m); err != nil {
		return nil, p.fail(span, "create", fmt.Errorf("failed to store mortgage: %w", err))
	}
	span.SetAttributes(attribute.String("mortgage.id", m.ID.String()))

	p.logger.Info("mortgage created",
		"mortgage_id", m.ID,
		"variant", m.Variant,
		"period", m.Period,
		"loan_amount", m.LoanAmount,
		"term_months", m.TermMonths,
	)
	return m, nil
}

// GetMortgage retrieves a scenario by its ID.
func (p *Planner) GetMortgage(ctx context.Context, id uuid.UUID) (*models.Mortgage, error) {
	_, span := p.start(ctx, "planner.GetMortgage", id)
	defer span.End()

	m, err := p.storage.GetMortgage(id)
	if err != nil {
		return nil, p.fail(span, "get", err)
	}
	return m, nil
}

// GetAllMortgages retrieves all scenarios.
func (p *Planner) GetAllMortgages(ctx context.Context) ([]*models.Mortgage, error) {
	_, span := p.tracer.Start(ctx, "planner.GetAllMortgages")
	defer span.End()

	mortgages, err := p.storage.GetAllMortgages()
	if err != nil {
		return nil, p.fail(span, "list", err)
	}
	return mortgages, nil
}

// UpdateMortgage replaces the terms of a scenario. Stored extra payments are
// revalidated against the new payment calendar; if any no longer falls on a
// due date the update is rejected and nothing changes.
func (p *Planner) UpdateMortgage(ctx context.Context, id uuid.UUID, in MortgageInput) (*models.Mortgage, error) {
	_, span := p.start(ctx, "planner.UpdateMortgage", id)
	defer span.End()

	m, err := p.storage.GetMortgage(id)
	if err != nil {
		return nil, p.fail(span, "update", err)
	}
	t, err := p.validate(in)
	if err != nil {
		return nil, p.fail(span, "update", err)
	}
	if _, err := p.loadExtras(id, t.cal); err != nil {
		return nil, p.fail(span, "update", fmt.Errorf("stored extra payments do not fit the updated terms: %w", err))
	}

	apply(m, in)
	m.UpdatedAt = p.now()
	if err := p.storage.UpdateMortgage(m); err != nil {
		return nil, p.fail(span, "update", fmt.Errorf("failed to update mortgage: %w", err))
	}

	p.logger.Info("mortgage updated", "mortgage_id", id)
	return m, nil
}

// DeleteMortgage deletes a scenario and its extra payments.
func (p *Planner) DeleteMortgage(ctx context.Context, id uuid.UUID) error {
	_, span := p.start(ctx, "planner.DeleteMortgage", id)
	defer span.End()

	if err := p.storage.DeleteMortgage(id); err != nil {
		return p.fail(span, "delete", err)
	}
	p.logger.Info("mortgage deleted", "mortgage_id", id)
	return nil
}

// Quote computes the periodic payment for in without storing anything. The
// start date is ignored.
func (p *Planner) Quote(ctx context.Context, in MortgageInput) (*models.Quote, error) {
	_, span := p.tracer.Start(ctx, "planner.Quote")
	defer span.End()

	if err := p.checkLimits(in); err != nil {
		return nil, p.fail(span, "quote", err)
	}
	calc, err := calculator(in)
	if err != nil {
		return nil, p.fail(span, "quote", err)
	}
	return &models.Quote{
		Variant:      calc.Variant(),
		Period:       calc.PeriodType(),
		LoanAmount:   in.LoanAmount,
		InterestRate: in.InterestRate,
		TermMonths:   calc.Term(),
		PeriodRate:   calc.PeriodRate(),
		Payment:      calc.Pmt(),
	}, nil
}

func (p *Planner) validate(in MortgageInput) (terms, error) {
	if err := p.checkLimits(in); err != nil {
		return terms{}, err
	}
	return termsOf(in)
}

func (p *Planner) checkLimits(in MortgageInput) error {
	if in.LoanAmount.InexactFloat64() > p.limits.MaxLoanAmount {
		return fmt.Errorf("loan amount %s exceeds the maximum of %v: %w", in.LoanAmount, p.limits.MaxLoanAmount, errs.ErrInvalidParameter)
	}
	if in.TermMonths > p.limits.MaxTermMonths {
		return fmt.Errorf("term of %d months exceeds the maximum of %d: %w", in.TermMonths, p.limits.MaxTermMonths, errs.ErrInvalidParameter)
	}
	return nil
}

func calculator(in MortgageInput) (pmt.Calculator, error) {
	variant, err := pmt.ParseVariant(string(in.Variant))
	if err != nil {
		return nil, err
	}
	return pmt.New(variant, in.Period, in.LoanAmount.InexactFloat64(), in.InterestRate.InexactFloat64(), in.TermMonths)
}

// termsOf builds the calculator and the payment calendar. The first payment is
// due one period after the start date and the calendar covers the term.
func termsOf(in MortgageInput) (terms, error) {
	calc, err := calculator(in)
	if err != nil {
		return terms{}, err
	}
	first, err := period.FirstDueDate(in.Period, in.StartDate.Time)
	if err != nil {
		return terms{}, err
	}
	cal, err := period.New(in.Period, first, period.CountFromMonths(in.Period, in.TermMonths))
	if err != nil {
		return terms{}, err
	}
	return terms{calc: calc, cal: cal}, nil
}

func inputOf(m *models.Mortgage) MortgageInput {
	return MortgageInput{
		Name:         m.Name,
		Variant:      m.Variant,
		Period:       m.Period,
		LoanAmount:   m.LoanAmount,
		InterestRate: m.InterestRate,
		TermMonths:   m.TermMonths,
		StartDate:    m.StartDate,
	}
}

func apply(m *models.Mortgage, in MortgageInput) {
	variant, _ := pmt.ParseVariant(string(in.Variant))
	m.Name = in.Name
	m.Variant = variant
	m.Period = in.Period
	m.LoanAmount = in.LoanAmount
	m.InterestRate = in.InterestRate
	m.TermMonths = in.TermMonths
	m.StartDate = models.NewDate(in.StartDate.Time)
}

func (p *Planner) start(ctx context.Context, name string, id uuid.UUID) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("mortgage.id", id.String())))
}

// fail records err on the span and in the error metrics and returns it.
func (p *Planner) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	observability.CalculationErrors.WithLabelValues(op, Kind(err)).Inc()
	return err
}

// Kind classifies err for metrics and transport status mapping.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, errs.ErrIncompatiblePeriod):
		return "incompatible_period"
	case errors.Is(err, errs.ErrUnknownDate):
		return "unknown_date"
	case errors.Is(err, errs.ErrEmptyOperation):
		return "empty_operation"
	default:
		return "internal"
	}
}
