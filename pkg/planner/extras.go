package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/errs"
	"github.com/mcclellann/fredMortgage/pkg/extra"
	"github.com/mcclellann/fredMortgage/pkg/models"
	"github.com/mcclellann/fredMortgage/pkg/period"
)

// DefinitionInput describes a recurring extra payment: amount paid on each of
// count dates of the given period starting at FirstDate.
type DefinitionInput struct {
	Period    period.Type     `json:"period"`
	FirstDate models.Date     `json:"first_date"`
	Count     int             `json:"count"`
	Amount    decimal.Decimal `json:"amount"`
}

// GetExtraPayments returns the extra payments of a scenario by due date.
func (p *Planner) GetExtraPayments(ctx context.Context, id uuid.UUID) ([]*models.ExtraPayment, error) {
	_, span := p.start(ctx, "planner.GetExtraPayments", id)
	defer span.End()

	payments, err := p.storage.GetExtraPayments(id)
	if err != nil {
		return nil, p.fail(span, "list_extra", err)
	}
	return payments, nil
}

// SetExtraPayments records payments, replacing any amount already recorded on
// the same due dates. Payments repeated within the batch are summed.
func (p *Planner) SetExtraPayments(ctx context.Context, id uuid.UUID, payments []models.ExtraPayment) ([]*models.ExtraPayment, error) {
	return p.updateExtras(ctx, "set_extra", id, func(s extra.Set) (extra.Set, error) {
		entries, err := entriesOf(payments)
		if err != nil {
			return extra.Set{}, err
		}
		return s.Set(entries)
	})
}

// AddExtraPayments adds payments onto any amount already recorded on the same
// due dates.
func (p *Planner) AddExtraPayments(ctx context.Context, id uuid.UUID, payments []models.ExtraPayment) ([]*models.ExtraPayment, error) {
	return p.updateExtras(ctx, "add_extra", id, func(s extra.Set) (extra.Set, error) {
		entries, err := entriesOf(payments)
		if err != nil {
			return extra.Set{}, err
		}
		return s.Add(entries)
	})
}

// RemoveExtraPayments deletes the extra payments on dates. Every date must
// have a recorded payment.
func (p *Planner) RemoveExtraPayments(ctx context.Context, id uuid.UUID, dates []time.Time) ([]*models.ExtraPayment, error) {
	return p.updateExtras(ctx, "remove_extra", id, func(s extra.Set) (extra.Set, error) {
		return s.Remove(dates...)
	})
}

// ClearExtraPayments deletes every extra payment of a scenario.
func (p *Planner) ClearExtraPayments(ctx context.Context, id uuid.UUID) error {
	_, err := p.updateExtras(ctx, "clear_extra", id, func(s extra.Set) (extra.Set, error) {
		return s.Clear()
	})
	return err
}

// ApplyDefinition expands a recurring extra payment onto the scenario's due
// dates. With add set, amounts are added onto existing payments; otherwise they
// replace them.
func (p *Planner) ApplyDefinition(ctx context.Context, id uuid.UUID, in DefinitionInput, add bool) ([]*models.ExtraPayment, error) {
	op := "set_definition"
	if add {
		op = "add_definition"
	}
	ctx, span := p.start(ctx, "planner.ApplyDefinition", id)
	defer span.End()

	cal, err := period.New(in.Period, in.FirstDate.Time, in.Count)
	if err != nil {
		return nil, p.fail(span, op, fmt.Errorf("extra payment calendar: %w", err))
	}
	def, err := extra.NewDefinition(cal, in.Amount.InexactFloat64())
	if err != nil {
		return nil, p.fail(span, op, err)
	}

	return p.updateExtras(ctx, op, id, func(s extra.Set) (extra.Set, error) {
		if add {
			return s.AddDefinition(def)
		}
		return s.SetDefinition(def)
	})
}

// updateExtras loads the stored payments of a scenario into a set validated
// against its calendar, applies fn and persists the result. Nothing is stored
// when fn fails.
func (p *Planner) updateExtras(ctx context.Context, op string, id uuid.UUID, fn func(extra.Set) (extra.Set, error)) ([]*models.ExtraPayment, error) {
	_, span := p.start(ctx, "planner."+op, id)
	defer span.End()

	m, err := p.storage.GetMortgage(id)
	if err != nil {
		return nil, p.fail(span, op, err)
	}
	t, err := termsOf(inputOf(m))
	if err != nil {
		return nil, p.fail(span, op, fmt.Errorf("stored mortgage %s: %w", id, err))
	}
	current, err := p.loadExtras(id, t.cal)
	if err != nil {
		return nil, p.fail(span, op, err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, p.fail(span, op, err)
	}

	payments := paymentsOf(id, next)
	if err := p.storage.ReplaceExtraPayments(id, payments); err != nil {
		return nil, p.fail(span, op, fmt.Errorf("failed to store extra payments: %w", err))
	}

	p.logger.Info("extra payments updated",
		"mortgage_id", id,
		"operation", op,
		"payments", next.Len(),
		"total", decimal.NewFromFloat(next.Total()).StringFixed(2),
	)
	return payments, nil
}

// loadExtras reads the stored payments of a scenario into a set for cal.
func (p *Planner) loadExtras(id uuid.UUID, cal period.Calendar) (extra.Set, error) {
	stored, err := p.storage.GetExtraPayments(id)
	if err != nil {
		return extra.Set{}, err
	}
	set, err := extra.NewSet(cal)
	if err != nil {
		return extra.Set{}, err
	}
	if len(stored) == 0 {
		return set, nil
	}
	entries := make(map[time.Time]float64, len(stored))
	for _, ep := range stored {
		entries[ep.DueDate.Time] = ep.Amount.InexactFloat64()
	}
	return set.Set(entries)
}

// entriesOf sums payments by due date. Every amount must be positive on its
// own, before any summing.
func entriesOf(payments []models.ExtraPayment) (map[time.Time]float64, error) {
	entries := make(map[time.Time]float64, len(payments))
	for _, ep := range payments {
		if !ep.Amount.IsPositive() {
			return nil, fmt.Errorf("extra payment on %s must be greater than 0, got %s: %w",
				ep.DueDate, ep.Amount, errs.ErrInvalidParameter)
		}
		entries[period.Normalize(ep.DueDate.Time)] += ep.Amount.InexactFloat64()
	}
	return entries, nil
}

func paymentsOf(id uuid.UUID, s extra.Set) []*models.ExtraPayment {
	dates := s.Dates()
	payments := make([]*models.ExtraPayment, 0, len(dates))
	for _, d := range dates {
		payments = append(payments, &models.ExtraPayment{
			MortgageID: id,
			DueDate:    models.NewDate(d),
			Amount:     decimal.NewFromFloat(s.Get(d)),
		})
	}
	return payments
}
