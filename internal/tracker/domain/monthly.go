package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryFact is the slice of a tracker entry the aggregators need.
type EntryFact struct {
	EmployeeID    int64
	Date          time.Time // civil date
	Production    decimal.Decimal
	BillableHours decimal.NullDecimal
	Active        bool
}

// Target is an employee's active monthly target.
type Target struct {
	ID                 int64
	EmployeeID         int64
	MonthYear          string
	MonthlyTarget      decimal.Decimal
	ExtraAssignedHours decimal.Decimal
	WorkingDays        int
}

// Total is the target plus extra assigned hours.
func (t Target) Total() decimal.Decimal {
	return t.MonthlyTarget.Add(t.ExtraAssignedHours)
}

// MonthlySummary is one employee's progress against a month's target.
type MonthlySummary struct {
	EmployeeID              int64               `json:"user_id"`
	EmployeeName            string              `json:"user_name"`
	MonthYear               string              `json:"month_year"`
	TargetID                *int64              `json:"user_monthly_tracker_id"`
	MonthlyTarget           decimal.Decimal     `json:"monthly_target"`
	ExtraAssignedHours      decimal.Decimal     `json:"extra_assigned_hours"`
	MonthlyTotalTarget      decimal.Decimal     `json:"monthly_total_target"`
	TotalBillableHoursMonth decimal.Decimal     `json:"total_billable_hours_month"`
	WorkingDays             *int                `json:"working_days"`
	WorkingDaysElapsed      int                 `json:"working_days_elapsed"`
	PendingDays             *int                `json:"pending_days"`
	DailyRequiredHours      decimal.NullDecimal `json:"daily_required_hours"`
}

// SummarizeMonth produces one row per employee, in the order given, whether
// or not the employee logged anything. Inactive facts and facts outside the
// window's month are ignored. targets is keyed by employee id.
func SummarizeMonth(month string, window MonthWindow, employees []Employee, targets map[int64]Target, facts []EntryFact) []MonthlySummary {
	billable := make(map[int64]decimal.Decimal)
	dates := make(map[int64][]time.Time)
	for _, f := range facts {
		if !f.Active || !window.Contains(f.Date) {
			continue
		}
		if f.BillableHours.Valid {
			billable[f.EmployeeID] = billable[f.EmployeeID].Add(f.BillableHours.Decimal)
		}
		dates[f.EmployeeID] = append(dates[f.EmployeeID], f.Date)
	}

	out := make([]MonthlySummary, 0, len(employees))
	for _, e := range employees {
		row := MonthlySummary{
			EmployeeID:              e.ID,
			EmployeeName:            e.Name,
			MonthYear:               month,
			MonthlyTarget:           decimal.Zero,
			ExtraAssignedHours:      decimal.Zero,
			MonthlyTotalTarget:      decimal.Zero,
			TotalBillableHoursMonth: billable[e.ID],
			WorkingDaysElapsed:      window.Elapsed(dates[e.ID]),
		}

		if t, ok := targets[e.ID]; ok {
			id, workingDays := t.ID, t.WorkingDays
			pending := max(workingDays-row.WorkingDaysElapsed, 0)

			row.TargetID = &id
			row.MonthlyTarget = t.MonthlyTarget
			row.ExtraAssignedHours = t.ExtraAssignedHours
			row.MonthlyTotalTarget = t.Total()
			row.WorkingDays = &workingDays
			row.PendingDays = &pending
			row.DailyRequiredHours = pace(row.MonthlyTotalTarget, row.TotalBillableHoursMonth, pending)
		}

		out = append(out, row)
	}
	return out
}
