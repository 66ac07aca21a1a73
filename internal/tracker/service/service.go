// Package service holds the tracker's use cases. Each service depends on
// the narrow store interfaces below so it can run against fakes in tests.
package service

import (
	"context"

	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/errors"
	"github.com/tfshrms/worktracker/pkg/logger"
)

// TrackerFilesFolder is the upload subfolder for tracker attachments.
const TrackerFilesFolder = "tracker_files"

// Transactor runs fn in a transaction carried by ctx.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EmployeeStore reads the org directory.
type EmployeeStore interface {
	GetByID(ctx context.Context, id int64) (*repository.Employee, error)
	GetEligible(ctx context.Context, id int64) (*repository.Employee, error)
	ListEligible(ctx context.Context) ([]domain.Employee, error)
	RoleOf(ctx context.Context, id int64) (string, error)
}

// TaskStore looks up tasks.
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*repository.Task, error)
}

// EntryStore persists tracker entries.
type EntryStore interface {
	Create(ctx context.Context, e *repository.Entry) error
	GetByID(ctx context.Context, id int64) (*repository.Entry, error)
	Update(ctx context.Context, e *repository.Entry) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, filter repository.EntryFilter) ([]repository.EntryView, error)
}

// TargetStore persists monthly targets.
type TargetStore interface {
	Create(ctx context.Context, t *repository.MonthlyTarget) error
	GetActive(ctx context.Context, id int64) (*repository.MonthlyTarget, error)
	Update(ctx context.Context, t *repository.MonthlyTarget) error
	Deactivate(ctx context.Context, id int64) error
	ActiveForMonth(ctx context.Context, employeeIDs []int64, month string) (map[int64]domain.Target, error)
	ListSummaries(ctx context.Context, filter repository.TargetFilter) ([]repository.MonthlyTargetSummary, error)
	GetSummary(ctx context.Context, id int64) (*repository.MonthlyTargetSummary, error)
}

// FileStore keeps attachments.
type FileStore interface {
	Save(payload, subfolder string) (string, error)
	Remove(subfolder, name string) error
	URL(subfolder, name string) *string
}

// EventPublisher announces changes and API calls. Implementations never fail.
type EventPublisher interface {
	PublishEntryCreated(ctx context.Context, e *repository.Entry)
	PublishEntryUpdated(ctx context.Context, e *repository.Entry)
	PublishEntryDeleted(ctx context.Context, e *repository.Entry)
	PublishTargetCreated(ctx context.Context, t *repository.MonthlyTarget)
	PublishTargetUpdated(ctx context.Context, t *repository.MonthlyTarget)
	PublishTargetDeleted(ctx context.Context, t *repository.MonthlyTarget)
	PublishAPICalled(ctx context.Context, operation string, employeeID int64, device events.Device)
}

// storeFailure passes AppErrors through and hides anything else behind a
// stable internal error after logging it.
func storeFailure(log *logger.Logger, err error, message string) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	log.Error().Err(err).Msg(message)
	return errors.Internal(message)
}
