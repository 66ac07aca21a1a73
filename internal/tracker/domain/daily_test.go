package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
)

func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func TestSummarizeDays_RunningTotals(t *testing.T) {
	employees := []domain.Employee{{ID: 7, Name: "Kavin"}}
	targets := map[int64]domain.Target{7: {ID: 9, MonthlyTarget: dec("100"), ExtraAssignedHours: dec("10"), WorkingDays: 20}}
	facts := []domain.EntryFact{
		fact(7, day(2026, time.March, 3), "30", "2.5"),
		fact(7, day(2026, time.March, 2), "10", "1.33333"),
		fact(7, day(2026, time.March, 2), "10", "1.33333"),
		fact(7, day(2026, time.March, 5), "5", ""),
	}

	rows := domain.SummarizeDays("Mar2026", employees, targets, facts)
	require.Len(t, rows, 3)

	// most recent first
	assert.Equal(t, []string{"2026-03-05", "2026-03-03", "2026-03-02"}, []string{rows[0].WorkDate, rows[1].WorkDate, rows[2].WorkDate})

	first := rows[2]
	assert.Equal(t, 2, first.TrackersCountDay)
	assert.True(t, first.TotalProductionDay.Equal(dec("20")))
	assert.Equal(t, "2.6667", first.TotalBillableHoursDay.StringFixed(4))
	assert.Equal(t, 1, first.WorkedDaysTillDay)
	assert.Equal(t, 19, first.PendingDaysAfterThisDay)
	require.NotNil(t, first.WorkingDays)
	assert.Equal(t, 20, *first.WorkingDays)

	second := rows[1]
	assert.Equal(t, "5.1667", second.CumulativeBillableHoursTillDay.StringFixed(4))
	assert.Equal(t, 2, second.WorkedDaysTillDay)
	assert.Equal(t, 18, second.PendingDaysAfterThisDay)
	// (110 - 5.16666) / 18
	assert.Equal(t, "5.8241", second.DailyRequiredHours.Decimal.StringFixed(4))

	last := rows[0]
	assert.True(t, last.TotalBillableHoursDay.IsZero())
	assert.True(t, last.CumulativeBillableHoursTillDay.Equal(second.CumulativeBillableHoursTillDay))
}

func TestSummarizeDays_CumulativeIsMonotonic(t *testing.T) {
	employees := []domain.Employee{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	var facts []domain.EntryFact
	for d := 1; d <= 15; d++ {
		facts = append(facts, fact(1, day(2026, time.April, d), "1", "0.7"))
		if d%3 == 0 {
			facts = append(facts, fact(2, day(2026, time.April, d), "1", "1.1"))
		}
	}

	rows := domain.SummarizeDays("Apr2026", employees, nil, facts)

	last := map[int64]string{}
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if prev, ok := last[row.EmployeeID]; ok {
			assert.True(t, row.CumulativeBillableHoursTillDay.GreaterThanOrEqual(dec(prev)))
		}
		last[row.EmployeeID] = row.CumulativeBillableHoursTillDay.String()
	}
}

func TestSummarizeDays_NoTarget(t *testing.T) {
	employees := []domain.Employee{{ID: 7, Name: "Kavin"}}
	rows := domain.SummarizeDays("Mar2026", employees, nil, []domain.EntryFact{fact(7, day(2026, time.March, 2), "1", "1")})

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].WorkingDays)
	assert.Nil(t, rows[0].TargetID)
	assert.Equal(t, 0, rows[0].PendingDaysAfterThisDay)
	assert.False(t, rows[0].DailyRequiredHours.Valid)
}

func TestSummarizeDays_PendingNeverNegative(t *testing.T) {
	employees := []domain.Employee{{ID: 7, Name: "Kavin"}}
	targets := map[int64]domain.Target{7: {ID: 1, MonthlyTarget: dec("10"), WorkingDays: 1}}
	facts := []domain.EntryFact{
		fact(7, day(2026, time.March, 2), "1", "1"),
		fact(7, day(2026, time.March, 3), "1", "1"),
	}

	rows := domain.SummarizeDays("Mar2026", employees, targets, facts)

	for _, row := range rows {
		assert.Equal(t, 0, row.PendingDaysAfterThisDay)
		assert.False(t, row.DailyRequiredHours.Valid)
	}
}

func TestSummarizeDays_OrderingAndScope(t *testing.T) {
	employees := []domain.Employee{{ID: 2, Name: "Zara"}, {ID: 1, Name: "Anil"}}
	inactive := fact(1, day(2026, time.March, 4), "1", "1")
	inactive.Active = false

	facts := []domain.EntryFact{
		fact(2, day(2026, time.March, 3), "1", "1"),
		fact(1, day(2026, time.March, 3), "1", "1"),
		fact(1, day(2026, time.March, 2), "1", "1"),
		fact(99, day(2026, time.March, 9), "1", "1"), // out of scope
		inactive,
	}

	rows := domain.SummarizeDays("Mar2026", employees, nil, facts)

	require.Len(t, rows, 3)
	assert.Equal(t, "Anil", rows[0].EmployeeName)
	assert.Equal(t, "Zara", rows[1].EmployeeName)
	assert.Equal(t, "2026-03-02", rows[2].WorkDate)
}
