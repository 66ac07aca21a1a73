package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/errors"
)

// Employee is an employees row joined with its role name.
type Employee struct {
	ID               int64           `db:"id"`
	UserName         string          `db:"user_name"`
	RoleName         sql.NullString  `db:"role_name"`
	TeamID           *int64          `db:"team_id"`
	ProjectManagerID string          `db:"project_manager_id"`
	AsstManagerID    string          `db:"asst_manager_id"`
	QAID             string          `db:"qa_id"`
	UserTenure       decimal.Decimal `db:"user_tenure"`
	IsActive         bool            `db:"is_active"`
	IsDeleted        bool            `db:"is_deleted"`
}

// Eligible reports whether the employee may take part in tracking.
func (e *Employee) Eligible() bool {
	return e.IsActive && !e.IsDeleted
}

// ToDomain parses the hierarchy columns once.
func (e *Employee) ToDomain() domain.Employee {
	return domain.Employee{
		ID:              e.ID,
		Name:            e.UserName,
		TeamID:          e.TeamID,
		RoleName:        e.RoleName.String,
		TenureFactor:    e.UserTenure,
		ProjectManagers: domain.ParseIDList(e.ProjectManagerID),
		AsstManagers:    domain.ParseIDList(e.AsstManagerID),
		QAs:             domain.ParseIDList(e.QAID),
	}
}

const employeeColumns = `
	e.id, e.user_name, r.role_name, e.team_id,
	e.project_manager_id, e.asst_manager_id, e.qa_id,
	e.user_tenure, e.is_active, e.is_deleted
`

// EmployeeRepository reads the org directory.
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID returns the employee regardless of status.
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*Employee, error) {
	var emp Employee
	query := `SELECT` + employeeColumns + `
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		WHERE e.id = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &emp, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("User")
		}
		return nil, err
	}
	return &emp, nil
}

// GetEligible returns the employee only when active and not deleted.
func (r *EmployeeRepository) GetEligible(ctx context.Context, id int64) (*Employee, error) {
	emp, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !emp.Eligible() {
		return nil, errors.NotFound("User")
	}
	return emp, nil
}

// ListEligible returns every active, not deleted employee ordered by name.
func (r *EmployeeRepository) ListEligible(ctx context.Context) ([]domain.Employee, error) {
	var rows []Employee
	query := `SELECT` + employeeColumns + `
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		WHERE e.is_active = TRUE AND e.is_deleted = FALSE
		ORDER BY e.user_name, e.id`

	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	out := make([]domain.Employee, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// RoleOf returns the role name of an eligible employee, or "" when the
// employee is unknown, ineligible or has no role.
func (r *EmployeeRepository) RoleOf(ctx context.Context, id int64) (string, error) {
	var role sql.NullString
	query := `
		SELECT r.role_name
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		WHERE e.id = $1 AND e.is_active = TRUE AND e.is_deleted = FALSE`

	if err := r.db.Querier(ctx).GetContext(ctx, &role, query, id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return role.String, nil
}
