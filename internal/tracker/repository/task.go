package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/pkg/database"
	"github.com/tfshrms/worktracker/pkg/errors"
)

// Task is a unit of work with a base production target.
type Task struct {
	ID         int64           `db:"id" json:"task_id"`
	ProjectID  *int64          `db:"project_id" json:"project_id"`
	TaskName   string          `db:"task_name" json:"task_name"`
	TaskTarget decimal.Decimal `db:"task_target" json:"task_target"`
}

// TaskRepository handles task lookups
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// GetByID returns the task or NotFound("Task").
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*Task, error) {
	var task Task
	query := `SELECT id, project_id, task_name, task_target FROM tasks WHERE id = $1`

	if err := r.db.Querier(ctx).GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("Task")
		}
		return nil, err
	}
	return &task, nil
}
