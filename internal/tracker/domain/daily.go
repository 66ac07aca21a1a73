package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DailyRow is one employee's production on one calendar day, with running
// totals for the days before it.
type DailyRow struct {
	EmployeeID                     int64               `json:"user_id"`
	EmployeeName                   string              `json:"user_name"`
	WorkDate                       string              `json:"work_date"`
	MonthYear                      string              `json:"month_year"`
	TotalProductionDay             decimal.Decimal     `json:"total_production_day"`
	TotalBillableHoursDay          decimal.Decimal     `json:"total_billable_hours_day"`
	TrackersCountDay               int                 `json:"trackers_count_day"`
	CumulativeBillableHoursTillDay decimal.Decimal     `json:"cumulative_billable_hours_till_day"`
	WorkedDaysTillDay              int                 `json:"worked_days_till_day"`
	TargetID                       *int64              `json:"user_monthly_tracker_id"`
	MonthlyTarget                  decimal.Decimal     `json:"monthly_target"`
	ExtraAssignedHours             decimal.Decimal     `json:"extra_assigned_hours"`
	MonthlyTotalTarget             decimal.Decimal     `json:"monthly_total_target"`
	WorkingDays                    *int                `json:"working_days"`
	PendingDaysAfterThisDay        int                 `json:"pending_days_after_this_day"`
	DailyRequiredHours             decimal.NullDecimal `json:"daily_required_hours"`

	date time.Time
}

type dayKey struct {
	employeeID int64
	date       time.Time
}

// SummarizeDays groups active facts by (employee, date) and walks each
// employee's days in ascending order to build the running figures. Facts
// for employees missing from employees are dropped. Rows come back most
// recent date first, then by employee name.
//
// Pending days count down by worked days, not calendar days, so an idle day
// leaves the required pace unchanged. Without a target row pending days are
// 0 and the pace is null.
func SummarizeDays(month string, employees []Employee, targets map[int64]Target, facts []EntryFact) []DailyRow {
	names := make(map[int64]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	days := make(map[dayKey]*DailyRow)
	perEmployee := make(map[int64][]*DailyRow)
	for _, f := range facts {
		name, ok := names[f.EmployeeID]
		if !ok || !f.Active {
			continue
		}

		key := dayKey{f.EmployeeID, f.Date}
		row, ok := days[key]
		if !ok {
			row = &DailyRow{
				EmployeeID:   f.EmployeeID,
				EmployeeName: name,
				WorkDate:     f.Date.Format(DateLayout),
				MonthYear:    month,
				date:         f.Date,
			}
			days[key] = row
			perEmployee[f.EmployeeID] = append(perEmployee[f.EmployeeID], row)
		}

		row.TotalProductionDay = row.TotalProductionDay.Add(f.Production)
		if f.BillableHours.Valid {
			row.TotalBillableHoursDay = row.TotalBillableHoursDay.Add(f.BillableHours.Decimal)
		}
		row.TrackersCountDay++
	}

	out := make([]DailyRow, 0, len(days))
	for employeeID, rows := range perEmployee {
		sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

		target, hasTarget := targets[employeeID]
		cumulative := decimal.Zero
		for i, row := range rows {
			cumulative = cumulative.Add(row.TotalBillableHoursDay)

			row.TotalBillableHoursDay = row.TotalBillableHoursDay.Round(4)
			row.CumulativeBillableHoursTillDay = cumulative.Round(4)
			row.WorkedDaysTillDay = i + 1

			if hasTarget {
				id, workingDays := target.ID, target.WorkingDays
				row.TargetID = &id
				row.MonthlyTarget = target.MonthlyTarget
				row.ExtraAssignedHours = target.ExtraAssignedHours
				row.MonthlyTotalTarget = target.Total()
				row.WorkingDays = &workingDays
				row.PendingDaysAfterThisDay = max(workingDays-row.WorkedDaysTillDay, 0)
				row.DailyRequiredHours = pace(row.MonthlyTotalTarget, cumulative, row.PendingDaysAfterThisDay)
			}

			out = append(out, *row)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].date.Equal(out[j].date) {
			return out[i].date.After(out[j].date)
		}
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}
