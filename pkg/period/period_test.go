package period

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcclellann/fredMortgage/pkg/errs"
)

func TestTypeTable(t *testing.T) {
	tests := []struct {
		typ       Type
		perYear   int
		mortgage  bool
		name      string
		nextAfter time.Time
	}{
		{Weekly, 52, true, "WEEKLY", Date(2024, 1, 8)},
		{RapidWeekly, 52, true, "RAPID_WEEKLY", Date(2024, 1, 8)},
		{Biweekly, 26, true, "BIWEEKLY", Date(2024, 1, 15)},
		{RapidBiweekly, 26, true, "RAPID_BIWEEKLY", Date(2024, 1, 15)},
		{Monthly, 12, true, "MONTHLY", Date(2024, 2, 1)},
		{Yearly, 1, false, "YEARLY", Date(2025, 1, 1)},
		{YearlyForWeekly, 1, false, "YEARLY_FOR_WEEKLY", Date(2024, 12, 30)},
		{YearlyForBiweekly, 1, false, "YEARLY_FOR_BIWEEKLY", Date(2024, 7, 1)},
		{OneTime, 0, false, "ONETIME", Date(2024, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.perYear, tt.typ.PmtsPerYear())
			assert.Equal(t, tt.mortgage, tt.typ.IsMortgagePeriod())
			assert.Equal(t, tt.name, tt.typ.String())
			assert.Equal(t, tt.nextAfter, AddPeriod(tt.typ, Date(2024, 1, 1)))

			parsed, err := ParseType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, parsed)
		})
	}
}

func TestParseTypeUnknown(t *testing.T) {
	_, err := ParseType("FORTNIGHTLY")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	var zero Type
	assert.False(t, zero.Valid())
}

func TestTypeJSON(t *testing.T) {
	var payload struct {
		Period Type `json:"period"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"period":"rapid_biweekly"}`), &payload))
	assert.Equal(t, RapidBiweekly, payload.Period)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"period":"RAPID_BIWEEKLY"}`, string(out))
}

func TestAddPeriodClampsMonthEnd(t *testing.T) {
	assert.Equal(t, Date(2023, 2, 28), AddPeriod(Monthly, Date(2023, 1, 31)))
	assert.Equal(t, Date(2024, 2, 29), AddPeriod(Monthly, Date(2024, 1, 31)))
	assert.Equal(t, Date(2025, 2, 28), AddPeriod(Yearly, Date(2024, 2, 29)))
	assert.Equal(t, Date(2024, 1, 31), AddPeriod(Monthly, Date(2023, 12, 31)))
}

func TestNewCalendar(t *testing.T) {
	first := time.Date(2024, 1, 31, 15, 4, 5, 0, time.FixedZone("EST", -5*3600))
	cal, err := New(Monthly, first, 4)
	require.NoError(t, err)

	assert.Equal(t, Monthly, cal.Type())
	assert.Equal(t, 4, cal.Count())
	assert.Equal(t, Date(2024, 1, 31), cal.First())
	assert.Equal(t, []time.Time{
		Date(2024, 1, 31),
		Date(2024, 2, 29),
		Date(2024, 3, 29),
		Date(2024, 4, 29),
	}, cal.Dates())
	assert.Equal(t, Date(2024, 4, 29), cal.Last())
}

func TestCalendarStrictlyIncreasing(t *testing.T) {
	for _, typ := range []Type{Weekly, RapidWeekly, Biweekly, RapidBiweekly, Monthly, Yearly, YearlyForWeekly, YearlyForBiweekly} {
		t.Run(typ.String(), func(t *testing.T) {
			cal, err := New(typ, Date(2020, 8, 31), 120)
			require.NoError(t, err)

			dates := cal.Dates()
			require.Len(t, dates, 120)
			for i := 1; i < len(dates); i++ {
				assert.True(t, dates[i].After(dates[i-1]), "date %d not after date %d", i, i-1)
				assert.Equal(t, AddPeriod(typ, dates[i-1]), dates[i])
			}
		})
	}
}

func TestNewCalendarInvalid(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		first time.Time
		count int
	}{
		{name: "missing type", typ: 0, first: Date(2024, 1, 1), count: 1},
		{name: "missing first date", typ: Monthly, count: 1},
		{name: "zero count", typ: Monthly, first: Date(2024, 1, 1), count: 0},
		{name: "negative count", typ: Weekly, first: Date(2024, 1, 1), count: -3},
		{name: "one time with count 2", typ: OneTime, first: Date(2024, 1, 1), count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.typ, tt.first, tt.count)
			assert.ErrorIs(t, err, errs.ErrInvalidParameter)
		})
	}
}

func TestOneTimeCalendar(t *testing.T) {
	cal, err := New(OneTime, Date(2024, 6, 15), 1)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{Date(2024, 6, 15)}, cal.Dates())
}

func TestCalendarWithers(t *testing.T) {
	cal, err := New(Monthly, Date(2024, 1, 1), 12)
	require.NoError(t, err)

	weekly, err := cal.WithType(Weekly)
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 1, 8), weekly.Dates()[1])
	assert.Equal(t, Monthly, cal.Type(), "original must not change")

	moved, err := cal.WithFirstDate(Date(2025, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, Date(2025, 4, 1), moved.Dates()[1])

	shorter, err := cal.WithCount(3)
	require.NoError(t, err)
	assert.Equal(t, 3, shorter.Count())
	assert.Equal(t, 12, cal.Count())

	_, err = cal.WithType(OneTime)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	same, err := New(Monthly, Date(2024, 1, 1), 12)
	require.NoError(t, err)
	assert.True(t, cal.Equal(same))
	assert.False(t, cal.Equal(shorter))
}

func TestCalendarDatesIsCopy(t *testing.T) {
	cal, err := New(Monthly, Date(2024, 1, 1), 2)
	require.NoError(t, err)

	dates := cal.Dates()
	dates[0] = Date(1999, 1, 1)
	assert.Equal(t, Date(2024, 1, 1), cal.Dates()[0])
}

func TestCalendarContains(t *testing.T) {
	cal, err := New(Biweekly, Date(2024, 1, 5), 26)
	require.NoError(t, err)

	assert.True(t, cal.Contains(Date(2024, 1, 5)))
	assert.True(t, cal.Contains(Date(2024, 1, 19)))
	assert.True(t, cal.Contains(time.Date(2024, 1, 19, 9, 30, 0, 0, time.UTC)))
	assert.False(t, cal.Contains(Date(2024, 1, 12)))
	assert.False(t, cal.Contains(Date(2023, 12, 22)))
}

func TestFirstDueDate(t *testing.T) {
	got, err := FirstDueDate(Monthly, Date(2024, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 4, 30), got)

	got, err = FirstDueDate(RapidBiweekly, Date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 3, 15), got)

	_, err = FirstDueDate(0, Date(2024, 3, 1))
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = FirstDueDate(Monthly, time.Time{})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestCountFromYears(t *testing.T) {
	assert.Equal(t, 25, CountFromYears(Yearly, 25))
	assert.Equal(t, 300, CountFromYears(Monthly, 25))
	assert.Equal(t, 1300, CountFromYears(Weekly, 25))
	assert.Equal(t, 1300, CountFromYears(RapidWeekly, 25))
	assert.Equal(t, 650, CountFromYears(Biweekly, 25))
	assert.Equal(t, 650, CountFromYears(RapidBiweekly, 25))
	assert.Equal(t, 1, CountFromYears(OneTime, 25))
	assert.Equal(t, 1, CountFromYears(YearlyForWeekly, 25))
}

func TestCountFromMonths(t *testing.T) {
	assert.Equal(t, 240, CountFromMonths(Monthly, 240))
	assert.Equal(t, 1040, CountFromMonths(Weekly, 240))
	assert.Equal(t, 520, CountFromMonths(RapidBiweekly, 240))
	assert.Equal(t, 3, CountFromMonths(Biweekly, 1))
	assert.Equal(t, 1, CountFromMonths(OneTime, 240))
}

func TestForYears(t *testing.T) {
	cal, err := ForYears(Monthly, Date(2024, 2, 1), 20)
	require.NoError(t, err)
	assert.Equal(t, 240, cal.Count())

	_, err = ForYears(Monthly, Date(2024, 2, 1), 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}
