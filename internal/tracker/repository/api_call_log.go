package repository

import (
	"context"
	"time"

	"github.com/tfshrms/worktracker/pkg/database"
)

// APICallLog records one invocation of a tracker operation.
type APICallLog struct {
	ID         int64     `db:"id"`
	EventID    string    `db:"event_id"`
	Operation  string    `db:"operation"`
	EmployeeID *int64    `db:"employee_id"`
	DeviceID   *string   `db:"device_id"`
	DeviceType *string   `db:"device_type"`
	CalledAt   time.Time `db:"called_at"`
}

// APICallLogRepository persists API call audit rows.
type APICallLogRepository struct {
	db *database.DB
}

// NewAPICallLogRepository creates a new API call log repository
func NewAPICallLogRepository(db *database.DB) *APICallLogRepository {
	return &APICallLogRepository{db: db}
}

// Insert stores the row. A redelivered event (same event id) is ignored.
func (r *APICallLogRepository) Insert(ctx context.Context, l *APICallLog) error {
	query := `
		INSERT INTO api_call_logs (event_id, operation, employee_id, device_id, device_type, called_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		l.EventID, l.Operation, l.EmployeeID, l.DeviceID, l.DeviceType, l.CalledAt,
	)
	return err
}
