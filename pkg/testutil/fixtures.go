package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// EmployeeFixture describes an employee row. Hierarchy fields use the
// stored text form, e.g. "7" or "[7, 9]".
type EmployeeFixture struct {
	Name             string
	Role             string
	TeamID           *int64
	ProjectManagerID string
	AsstManagerID    string
	QAID             string
	Tenure           string
	Inactive         bool
}

// FixtureFactory inserts organization rows with sensible defaults.
type FixtureFactory struct {
	db       *sqlx.DB
	sequence int
	roles    map[string]int64
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory(db *sqlx.DB) *FixtureFactory {
	return &FixtureFactory{db: db, roles: make(map[string]int64)}
}

func (f *FixtureFactory) next() int {
	f.sequence++
	return f.sequence
}

// Team inserts a team and returns its id.
func (f *FixtureFactory) Team(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := f.db.QueryRowx(`INSERT INTO teams (team_name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert team: %v", err)
	}
	return id
}

// Project inserts a project and returns its id.
func (f *FixtureFactory) Project(t *testing.T) int64 {
	t.Helper()
	var id int64
	name := fmt.Sprintf("Project %d", f.next())
	err := f.db.QueryRowx(`INSERT INTO projects (project_name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert project: %v", err)
	}
	return id
}

// Task inserts a task with the given per-shift target and returns its id.
func (f *FixtureFactory) Task(t *testing.T, projectID int64, target string) int64 {
	t.Helper()
	var id int64
	name := fmt.Sprintf("Task %d", f.next())
	err := f.db.QueryRowx(
		`INSERT INTO tasks (project_id, task_name, task_target) VALUES ($1, $2, $3) RETURNING id`,
		projectID, name, decimal.RequireFromString(target),
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert task: %v", err)
	}
	return id
}

func (f *FixtureFactory) role(t *testing.T, name string) int64 {
	t.Helper()
	if id, ok := f.roles[name]; ok {
		return id
	}
	var id int64
	err := f.db.QueryRowx(`INSERT INTO roles (role_name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert role: %v", err)
	}
	f.roles[name] = id
	return id
}

// Employee inserts an employee and returns its id.
func (f *FixtureFactory) Employee(t *testing.T, e EmployeeFixture) int64 {
	t.Helper()
	if e.Name == "" {
		e.Name = fmt.Sprintf("Employee %d", f.next())
	}
	if e.Role == "" {
		e.Role = "agent"
	}
	if e.Tenure == "" {
		e.Tenure = "1"
	}

	var id int64
	err := f.db.QueryRowx(`
		INSERT INTO employees (
			user_name, role_id, team_id, project_manager_id, asst_manager_id, qa_id, user_tenure, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.Name, f.role(t, e.Role), e.TeamID, e.ProjectManagerID, e.AsstManagerID, e.QAID,
		decimal.RequireFromString(e.Tenure), !e.Inactive,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert employee: %v", err)
	}
	return id
}

// Entry inserts a tracker entry directly, bypassing the rate calculation.
func (f *FixtureFactory) Entry(t *testing.T, employeeID, projectID, taskID int64, production, billable string, at time.Time) int64 {
	t.Helper()
	var id int64
	err := f.db.QueryRowContext(context.Background(), `
		INSERT INTO tracker_entries (
			employee_id, project_id, task_id, production, actual_target, tenure_target, billable_hours, date_time, updated_at
		) VALUES ($1, $2, $3, $4, 0, 0, $5, $6, $6)
		RETURNING id`,
		employeeID, projectID, taskID, decimal.RequireFromString(production), decimal.RequireFromString(billable), at,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert tracker entry: %v", err)
	}
	return id
}
