package planner

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcclellann/fredMortgage/pkg/amort"
	"github.com/mcclellann/fredMortgage/pkg/cache"
	"github.com/mcclellann/fredMortgage/pkg/extra"
	"github.com/mcclellann/fredMortgage/pkg/models"
	"github.com/mcclellann/fredMortgage/pkg/observability"
	"github.com/mcclellann/fredMortgage/pkg/period"
)

// Schedule builds the amortization schedule of a scenario with its extra
// payments applied.
func (p *Planner) Schedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	ctx, span := p.start(ctx, "planner.Schedule", id)
	defer span.End()

	m, err := p.storage.GetMortgage(id)
	if err != nil {
		return nil, p.fail(span, "schedule", err)
	}
	t, err := termsOf(inputOf(m))
	if err != nil {
		return nil, p.fail(span, "schedule", err)
	}
	extras, err := p.loadExtras(id, t.cal)
	if err != nil {
		return nil, p.fail(span, "schedule", err)
	}

	key := scheduleKey(t, extras)
	if s, ok := p.cachedSchedule(ctx, key); ok {
		span.SetAttributes(attribute.Bool("schedule.cached", true))
		s.MortgageID = id
		return s, nil
	}

	ledger, err := p.build(t, extras)
	if err != nil {
		return nil, p.fail(span, "schedule", err)
	}
	if !ledger.PaidOff() {
		_, last, _ := ledger.Last()
		p.logger.Warn("payment calendar ran out before payoff",
			"mortgage_id", id,
			"periods", ledger.Len(),
			"residual", last.Balance(),
		)
	}

	s := scheduleOf(ledger)
	p.storeSchedule(ctx, key, s)
	s.MortgageID = id
	span.SetAttributes(attribute.Int("schedule.periods", s.Periods))
	return s, nil
}

func (p *Planner) build(t terms, extras extra.Set) (*amort.Ledger, error) {
	start := time.Now()
	ledger, err := amort.Build(t.calc, t.cal, extras)
	if err != nil {
		return nil, err
	}
	observability.ScheduleBuildDuration.Observe(time.Since(start).Seconds())
	observability.SchedulesBuilt.WithLabelValues(string(t.calc.Variant()), t.calc.PeriodType().String()).Inc()
	observability.SchedulePeriods.Observe(float64(ledger.Len()))
	return ledger, nil
}

func scheduleOf(l *amort.Ledger) *models.Schedule {
	sum := l.Summary()
	s := &models.Schedule{
		Payment:       sum.Payment,
		Periods:       sum.Periods,
		PayoffDate:    models.NewDate(sum.PayoffDate),
		TotalInterest: sum.TotalInterest,
		TotalExtra:    sum.TotalExtra,
		TotalPaid:     sum.TotalPaid,
		TotalCost:     sum.TotalCost,
		Residual:      sum.Residual,
		PaidOff:       sum.PaidOff,
		Entries:       make([]models.ScheduleEntry, 0, l.Len()),
	}
	for d, r := range l.All() {
		s.Entries = append(s.Entries, models.ScheduleEntry{
			Number:             len(s.Entries) + 1,
			DueDate:            models.NewDate(d),
			Total:              r.Total(),
			Principal:          r.Principal(),
			ExtraPrincipal:     r.ExtraPrincipal(),
			Interest:           r.Interest(),
			CumulativeInterest: r.CumulativeInterest(),
			Balance:            r.Balance(),
		})
	}
	return s
}

// scheduleKey addresses a schedule by everything that determines it, so equal
// scenarios share one cache entry.
func scheduleKey(t terms, extras extra.Set) string {
	parts := []string{
		string(t.calc.Variant()),
		t.calc.PeriodType().String(),
		formatFloat(t.calc.LoanAmount()),
		formatFloat(t.calc.Rate()),
		strconv.Itoa(t.calc.Term()),
		t.cal.First().Format(period.DateLayout),
		strconv.Itoa(t.cal.Count()),
	}
	for _, d := range extras.Dates() {
		parts = append(parts, d.Format(period.DateLayout)+"="+formatFloat(extras.Get(d)))
	}
	return cache.Key(parts...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// cachedSchedule returns the cached schedule for key. Cache failures are
// logged and treated as a miss.
func (p *Planner) cachedSchedule(ctx context.Context, key string) (*models.Schedule, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		observability.CacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("schedule cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		observability.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var s models.Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		observability.CacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("failed to decode cached schedule", "key", key, "error", err)
		return nil, false
	}
	observability.CacheLookups.WithLabelValues("hit").Inc()
	trace.SpanFromContext(ctx).AddEvent("schedule cache hit")
	return &s, true
}

func (p *Planner) storeSchedule(ctx context.Context, key string, s *models.Schedule) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		p.logger.Warn("failed to encode schedule for cache", "error", err)
		return
	}
	if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
		p.logger.Warn("failed to cache schedule", "key", key, "error", err)
	}
}
