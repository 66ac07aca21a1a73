package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/errors"
	"github.com/tfshrms/worktracker/pkg/testutil"
)

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM tasks WHERE id = $1").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repository.NewTaskRepository(mockDB.DB).GetByID(context.Background(), 9)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Task not found", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeRepository_GetEligible_RejectsDeleted(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rows := testutil.MockRows("id", "user_name", "role_name", "team_id",
		"project_manager_id", "asst_manager_id", "qa_id", "user_tenure", "is_active", "is_deleted").
		AddRow(4, "Dana", "agent", nil, "7", "", "", "0.8", true, true)
	mockDB.ExpectQuery("FROM employees e").WithArgs(int64(4)).WillReturnRows(rows)

	_, err := repository.NewEmployeeRepository(mockDB.DB).GetEligible(context.Background(), 4)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "User not found", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeRepository_RoleOf_UnknownIsEmpty(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT r.role_name").WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)

	role, err := repository.NewEmployeeRepository(mockDB.DB).RoleOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, role)
}

func TestTrackerRepository_Create(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	entry := &repository.Entry{
		EmployeeID:    3,
		ProjectID:     1,
		TaskID:        2,
		Production:    decimal.NewFromInt(40),
		ActualTarget:  decimal.NewFromInt(100),
		TenureTarget:  decimal.NewFromInt(80),
		BillableHours: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
		DateTime:      now,
		UpdatedAt:     now,
	}

	mockDB.ExpectQuery("INSERT INTO tracker_entries").
		WithArgs(int64(3), int64(1), int64(2), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil, testutil.AnyTime{}, testutil.AnyTime{}).
		WillReturnRows(testutil.MockRows("id").AddRow(11))

	err := repository.NewTrackerRepository(mockDB.DB).Create(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, int64(11), entry.ID)
	assert.True(t, entry.IsActive)
	mockDB.ExpectationsWereMet(t)
}

func TestTrackerRepository_Deactivate_Missing(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE tracker_entries SET is_active = FALSE WHERE id = $1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repository.NewTrackerRepository(mockDB.DB).Deactivate(context.Background(), 5)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestTrackerRepository_List_EmptyScopeSkipsQuery(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	entries, err := repository.NewTrackerRepository(mockDB.DB).List(context.Background(), repository.EntryFilter{
		EmployeeIDs: []int64{},
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
	mockDB.ExpectationsWereMet(t)
}

func TestTrackerRepository_List_BuildsFilters(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	team := int64(2)
	active := true

	mockDB.ExpectQuery("WHERE t.employee_id = ANY($1) AND e.team_id = $2 AND t.date_time >= $3 AND t.date_time < $4 AND t.is_active = $5").
		WithArgs(pq.Array([]int64{3, 4}), team, from, before, active).
		WillReturnRows(testutil.MockRows("id"))

	_, err := repository.NewTrackerRepository(mockDB.DB).List(context.Background(), repository.EntryFilter{
		EmployeeIDs: []int64{3, 4},
		TeamID:      &team,
		From:        &from,
		Before:      &before,
		Active:      &active,
	})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestMonthlyTargetRepository_Create_DuplicateActive(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO monthly_targets").
		WillReturnError(&pq.Error{Code: "23505", Constraint: database.ConstraintActiveMonthlyTarget})

	err := repository.NewMonthlyTargetRepository(mockDB.DB, "UTC").Create(context.Background(), &repository.MonthlyTarget{
		EmployeeID:    3,
		MonthYear:     "Mar2025",
		MonthlyTarget: decimal.NewFromInt(160),
		WorkingDays:   20,
		CreatedAt:     time.Now(),
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, database.MonthlyTargetExistsMessage, appErr.Message)
}

func TestMonthlyTargetRepository_Deactivate_AlreadyInactive(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("WHERE id = $1 AND is_active = TRUE").
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repository.NewMonthlyTargetRepository(mockDB.DB, "UTC").Deactivate(context.Background(), 8)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Active record not found", appErr.Message)
}

func TestMonthlyTargetRepository_ActiveForMonth(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	rows := testutil.MockRows("id", "employee_id", "month_year", "monthly_target",
		"extra_assigned_hours", "working_days", "is_active", "created_at").
		AddRow(1, 3, "Mar2025", "160", nil, 20, true, time.Now())
	mockDB.ExpectQuery("month_year = $1 AND employee_id = ANY($2)").
		WithArgs("Mar2025", pq.Array([]int64{3, 4})).
		WillReturnRows(rows)

	targets, err := repository.NewMonthlyTargetRepository(mockDB.DB, "UTC").
		ActiveForMonth(context.Background(), []int64{3, 4}, "Mar2025")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.True(t, targets[3].ExtraAssignedHours.IsZero())
	assert.Equal(t, "160", targets[3].Total().String())
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE tracker_entries SET is_active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("INSERT INTO monthly_targets").
		WillReturnError(&pq.Error{Code: "23505", Constraint: database.ConstraintActiveMonthlyTarget})
	mockDB.ExpectRollback()

	trackers := repository.NewTrackerRepository(mockDB.DB)
	targets := repository.NewMonthlyTargetRepository(mockDB.DB, "UTC")

	err := mockDB.DB.Transaction(context.Background(), func(ctx context.Context) error {
		if err := trackers.Deactivate(ctx, 1); err != nil {
			return err
		}
		return targets.Create(ctx, &repository.MonthlyTarget{EmployeeID: 1, MonthYear: "Mar2025"})
	})
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}
