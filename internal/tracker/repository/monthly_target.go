package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/errors"
)

// MonthlyTarget is an employee's production target for one month.
type MonthlyTarget struct {
	ID                 int64               `db:"id" json:"user_monthly_tracker_id"`
	EmployeeID         int64               `db:"employee_id" json:"user_id"`
	MonthYear          string              `db:"month_year" json:"month_year"`
	MonthlyTarget      decimal.Decimal     `db:"monthly_target" json:"monthly_target"`
	ExtraAssignedHours decimal.NullDecimal `db:"extra_assigned_hours" json:"extra_assigned_hours"`
	WorkingDays        int                 `db:"working_days" json:"working_days"`
	IsActive           bool                `db:"is_active" json:"is_active"`
	CreatedAt          time.Time           `db:"created_at" json:"created_date"`
}

// ToDomain treats missing extra hours as zero.
func (t *MonthlyTarget) ToDomain() domain.Target {
	return domain.Target{
		ID:                 t.ID,
		EmployeeID:         t.EmployeeID,
		MonthYear:          t.MonthYear,
		MonthlyTarget:      t.MonthlyTarget,
		ExtraAssignedHours: t.ExtraAssignedHours.Decimal,
		WorkingDays:        t.WorkingDays,
	}
}

// MonthlyTargetSummary is a target with the production logged against it.
// WorkedDates holds every distinct active entry date of the month; the
// service reduces it to working days so far.
type MonthlyTargetSummary struct {
	MonthlyTarget
	UserName             string          `db:"user_name" json:"user_name"`
	TotalProduction      decimal.Decimal `db:"total_production" json:"total_production"`
	TotalBillableHours   decimal.Decimal `db:"total_billable_hours" json:"total_billable_hours"`
	TrackerRows          int             `db:"tracker_rows" json:"tracker_rows"`
	WorkedDates          pq.StringArray  `db:"worked_dates" json:"-"`
	WorkingDaysTillToday int             `db:"-" json:"working_days_till_today"`
}

// TargetFilter narrows a target listing.
type TargetFilter struct {
	EmployeeID *int64
	MonthYear  string
}

// MonthlyTargetRepository handles monthly target persistence. timezone
// decides which month an entry timestamp belongs to.
type MonthlyTargetRepository struct {
	db       *database.DB
	timezone string
}

// NewMonthlyTargetRepository creates a new monthly target repository
func NewMonthlyTargetRepository(db *database.DB, timezone string) *MonthlyTargetRepository {
	if timezone == "" {
		timezone = "UTC"
	}
	return &MonthlyTargetRepository{db: db, timezone: timezone}
}

// Create inserts an active target. A second active target for the same
// employee and month violates ux_monthly_targets_active and comes back as
// a Conflict.
func (r *MonthlyTargetRepository) Create(ctx context.Context, t *MonthlyTarget) error {
	query := `
		INSERT INTO monthly_targets (
			employee_id, month_year, monthly_target, extra_assigned_hours, working_days, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING id
	`
	err := r.db.Querier(ctx).QueryRowxContext(ctx, query,
		t.EmployeeID, t.MonthYear, t.MonthlyTarget, t.ExtraAssignedHours, t.WorkingDays, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	t.IsActive = true
	return nil
}

// GetActive returns an active target by id.
func (r *MonthlyTargetRepository) GetActive(ctx context.Context, id int64) (*MonthlyTarget, error) {
	var t MonthlyTarget
	query := `
		SELECT id, employee_id, month_year, monthly_target, extra_assigned_hours,
		       working_days, is_active, created_at
		FROM monthly_targets
		WHERE id = $1 AND is_active = TRUE
	`
	if err := r.db.Querier(ctx).GetContext(ctx, &t, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundMessage("Active record not found")
		}
		return nil, err
	}
	return &t, nil
}

// Update rewrites an active target.
func (r *MonthlyTargetRepository) Update(ctx context.Context, t *MonthlyTarget) error {
	query := `
		UPDATE monthly_targets SET
			employee_id = $2, month_year = $3, monthly_target = $4,
			extra_assigned_hours = $5, working_days = $6
		WHERE id = $1 AND is_active = TRUE
	`
	result, err := r.db.Querier(ctx).ExecContext(ctx, query,
		t.ID, t.EmployeeID, t.MonthYear, t.MonthlyTarget, t.ExtraAssignedHours, t.WorkingDays,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFoundMessage("Active record not found")
	}
	return nil
}

// Deactivate soft deletes an active target.
func (r *MonthlyTargetRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE monthly_targets SET is_active = FALSE WHERE id = $1 AND is_active = TRUE`

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFoundMessage("Active record not found")
	}
	return nil
}

// ActiveForMonth returns the active targets of the employees for month,
// keyed by employee id.
func (r *MonthlyTargetRepository) ActiveForMonth(ctx context.Context, employeeIDs []int64, month string) (map[int64]domain.Target, error) {
	out := make(map[int64]domain.Target)
	if len(employeeIDs) == 0 {
		return out, nil
	}

	var rows []MonthlyTarget
	query := `
		SELECT id, employee_id, month_year, monthly_target, extra_assigned_hours,
		       working_days, is_active, created_at
		FROM monthly_targets
		WHERE is_active = TRUE AND month_year = $1 AND employee_id = ANY($2)
	`
	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query, month, pq.Array(employeeIDs)); err != nil {
		return nil, err
	}

	for i := range rows {
		out[rows[i].EmployeeID] = rows[i].ToDomain()
	}
	return out, nil
}

const summarySelect = `
	SELECT mt.id, mt.employee_id, mt.month_year, mt.monthly_target, mt.extra_assigned_hours,
	       mt.working_days, mt.is_active, mt.created_at, e.user_name,
	       COALESCE(agg.total_production, 0) AS total_production,
	       COALESCE(agg.total_billable_hours, 0) AS total_billable_hours,
	       COALESCE(agg.tracker_rows, 0) AS tracker_rows,
	       COALESCE(agg.worked_dates, '{}') AS worked_dates
	FROM monthly_targets mt
	JOIN employees e ON e.id = mt.employee_id
	LEFT JOIN LATERAL (
		SELECT SUM(te.production) AS total_production,
		       SUM(te.billable_hours) AS total_billable_hours,
		       COUNT(*) AS tracker_rows,
		       ARRAY_AGG(DISTINCT TO_CHAR(te.date_time AT TIME ZONE $1, 'YYYY-MM-DD')) AS worked_dates
		FROM tracker_entries te
		WHERE te.employee_id = mt.employee_id
		  AND te.is_active = TRUE
		  AND TO_CHAR(te.date_time AT TIME ZONE $1, 'MonYYYY') = mt.month_year
	) agg ON TRUE
`

// ListSummaries returns active targets with their month's totals, latest
// month first.
func (r *MonthlyTargetRepository) ListSummaries(ctx context.Context, filter TargetFilter) ([]MonthlyTargetSummary, error) {
	query := summarySelect + `
		WHERE mt.is_active = TRUE
		  AND ($2::BIGINT IS NULL OR mt.employee_id = $2)
		  AND ($3 = '' OR mt.month_year = $3)
		ORDER BY TO_DATE(mt.month_year, 'MonYYYY') DESC, mt.id DESC
	`

	rows := []MonthlyTargetSummary{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query, r.timezone, filter.EmployeeID, filter.MonthYear); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetSummary returns one active target with its month's totals.
func (r *MonthlyTargetRepository) GetSummary(ctx context.Context, id int64) (*MonthlyTargetSummary, error) {
	query := summarySelect + `
		WHERE mt.id = $2 AND mt.is_active = TRUE
	`

	var row MonthlyTargetSummary
	if err := r.db.Querier(ctx).GetContext(ctx, &row, query, r.timezone, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundMessage("Record not found")
		}
		return nil, err
	}
	return &row, nil
}
