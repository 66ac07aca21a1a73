package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/errors"
)

// Entry is one production record.
type Entry struct {
	ID            int64               `db:"id" json:"tracker_id"`
	EmployeeID    int64               `db:"employee_id" json:"user_id"`
	ProjectID     int64               `db:"project_id" json:"project_id"`
	TaskID        int64               `db:"task_id" json:"task_id"`
	Production    decimal.Decimal     `db:"production" json:"production"`
	ActualTarget  decimal.Decimal     `db:"actual_target" json:"actual_target"`
	TenureTarget  decimal.Decimal     `db:"tenure_target" json:"tenure_target"`
	BillableHours decimal.NullDecimal `db:"billable_hours" json:"billable_hours"`
	TrackerFile   *string             `db:"tracker_file" json:"tracker_file"`
	IsActive      bool                `db:"is_active" json:"is_active"`
	DateTime      time.Time           `db:"date_time" json:"date_time"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

// EntryView is an entry joined with display names for listings.
type EntryView struct {
	Entry
	UserName    string  `db:"user_name" json:"user_name"`
	TeamID      *int64  `db:"team_id" json:"team_id"`
	TeamName    *string `db:"team_name" json:"team_name"`
	ProjectName *string `db:"project_name" json:"project_name"`
	TaskName    *string `db:"task_name" json:"task_name"`
}

// EntryFilter narrows an entry listing. Nil fields do not filter.
// EmployeeIDs nil means every employee; an empty slice matches nothing.
type EntryFilter struct {
	EmployeeIDs []int64
	TeamID      *int64
	ProjectID   *int64
	TaskID      *int64
	From        *time.Time // inclusive
	Before      *time.Time // exclusive
	Active      *bool
}

// TrackerRepository handles tracker entry persistence
type TrackerRepository struct {
	db *database.DB
}

// NewTrackerRepository creates a new tracker repository
func NewTrackerRepository(db *database.DB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

// Create inserts the entry and fills in its id.
func (r *TrackerRepository) Create(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO tracker_entries (
			employee_id, project_id, task_id, production, actual_target,
			tenure_target, billable_hours, tracker_file, is_active, date_time, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10)
		RETURNING id
	`
	err := r.db.Querier(ctx).QueryRowxContext(ctx, query,
		e.EmployeeID, e.ProjectID, e.TaskID, e.Production, e.ActualTarget,
		e.TenureTarget, e.BillableHours, e.TrackerFile, e.DateTime, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	e.IsActive = true
	return nil
}

// GetByID returns the entry whether active or not.
func (r *TrackerRepository) GetByID(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	query := `
		SELECT id, employee_id, project_id, task_id, production, actual_target,
		       tenure_target, billable_hours, tracker_file, is_active, date_time, updated_at
		FROM tracker_entries
		WHERE id = $1
	`
	if err := r.db.Querier(ctx).GetContext(ctx, &e, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("Tracker")
		}
		return nil, err
	}
	return &e, nil
}

// Update rewrites the computed fields and the attachment reference.
func (r *TrackerRepository) Update(ctx context.Context, e *Entry) error {
	query := `
		UPDATE tracker_entries SET
			production = $2, actual_target = $3, tenure_target = $4,
			billable_hours = $5, tracker_file = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.Querier(ctx).ExecContext(ctx, query,
		e.ID, e.Production, e.ActualTarget, e.TenureTarget,
		e.BillableHours, e.TrackerFile, e.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("Tracker")
	}
	return nil
}

// Deactivate soft deletes the entry. updated_at is left alone and repeating
// the call on an inactive entry succeeds.
func (r *TrackerRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE tracker_entries SET is_active = FALSE WHERE id = $1`

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("Tracker")
	}
	return nil
}

// List returns entries matching filter, newest first.
func (r *TrackerRepository) List(ctx context.Context, filter EntryFilter) ([]EntryView, error) {
	if filter.EmployeeIDs != nil && len(filter.EmployeeIDs) == 0 {
		return []EntryView{}, nil
	}

	where, args := filter.clauses()
	query := `
		SELECT t.id, t.employee_id, t.project_id, t.task_id, t.production, t.actual_target,
		       t.tenure_target, t.billable_hours, t.tracker_file, t.is_active, t.date_time, t.updated_at,
		       e.user_name, e.team_id, tm.team_name, p.project_name, tk.task_name
		FROM tracker_entries t
		JOIN employees e ON e.id = t.employee_id
		LEFT JOIN teams tm ON tm.id = e.team_id
		LEFT JOIN projects p ON p.id = t.project_id
		LEFT JOIN tasks tk ON tk.id = t.task_id
	` + where + `
		ORDER BY t.date_time DESC, t.id DESC
	`

	entries := []EntryView{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func (f EntryFilter) clauses() (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.EmployeeIDs != nil {
		add("t.employee_id = ANY($%d)", pq.Array(f.EmployeeIDs))
	}
	if f.TeamID != nil {
		add("e.team_id = $%d", *f.TeamID)
	}
	if f.ProjectID != nil {
		add("t.project_id = $%d", *f.ProjectID)
	}
	if f.TaskID != nil {
		add("t.task_id = $%d", *f.TaskID)
	}
	if f.From != nil {
		add("t.date_time >= $%d", *f.From)
	}
	if f.Before != nil {
		add("t.date_time < $%d", *f.Before)
	}
	if f.Active != nil {
		add("t.is_active = $%d", *f.Active)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
