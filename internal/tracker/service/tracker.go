package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/logger"
)

// CreateEntryInput is a new tracker entry. TenureTarget overrides the
// computed tenure target when set.
type CreateEntryInput struct {
	EmployeeID   int64
	ProjectID    int64
	TaskID       int64
	Production   decimal.Decimal
	TenureTarget *decimal.Decimal
	TrackerFile  string
	Device       events.Device
}

// UpdateEntryInput changes an entry. Nil fields keep the stored value and an
// empty TrackerFile keeps the current attachment.
type UpdateEntryInput struct {
	ID          int64
	Production  *decimal.Decimal
	BaseTarget  *decimal.Decimal
	TrackerFile string
	Device      events.Device
}

// TrackerService handles tracker entry mutations
type TrackerService struct {
	tx        Transactor
	employees EmployeeStore
	tasks     TaskStore
	entries   EntryStore
	files     FileStore
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewTrackerService creates a new tracker service
func NewTrackerService(
	tx Transactor,
	employees EmployeeStore,
	tasks TaskStore,
	entries EntryStore,
	files FileStore,
	publisher EventPublisher,
	log *logger.Logger,
) *TrackerService {
	return &TrackerService{
		tx:        tx,
		employees: employees,
		tasks:     tasks,
		entries:   entries,
		files:     files,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// Create records a production entry for an eligible employee.
func (s *TrackerService) Create(ctx context.Context, in CreateEntryInput) (*repository.Entry, error) {
	fileName, err := s.files.Save(in.TrackerFile, TrackerFilesFolder)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to store tracker file")
	}

	now := s.now().UTC()
	entry := &repository.Entry{
		EmployeeID: in.EmployeeID,
		ProjectID:  in.ProjectID,
		TaskID:     in.TaskID,
		Production: in.Production,
		DateTime:   now,
		UpdatedAt:  now,
	}
	if fileName != "" {
		entry.TrackerFile = &fileName
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		emp, err := s.employees.GetEligible(ctx, in.EmployeeID)
		if err != nil {
			return err
		}
		task, err := s.tasks.GetByID(ctx, in.TaskID)
		if err != nil {
			return err
		}

		targets := domain.CalculateTargets(task.TaskTarget, emp.UserTenure)
		entry.ActualTarget = targets.Actual
		entry.TenureTarget = targets.Tenure
		if in.TenureTarget != nil {
			entry.TenureTarget = *in.TenureTarget
		}
		entry.BillableHours = domain.BillableHours(entry.Production, entry.TenureTarget)

		return s.entries.Create(ctx, entry)
	})
	if err != nil {
		s.discard(fileName)
		return nil, storeFailure(s.logger, err, "failed to add tracker")
	}

	s.logger.Info().
		Int64("tracker_id", entry.ID).
		Int64("employee_id", entry.EmployeeID).
		Msg("tracker entry created")

	s.publisher.PublishEntryCreated(ctx, entry)
	s.publisher.PublishAPICalled(ctx, events.OpAddTracker, entry.EmployeeID, in.Device)
	return entry, nil
}

// Update recomputes an entry's targets and billable hours from the owner's
// current tenure factor.
func (s *TrackerService) Update(ctx context.Context, in UpdateEntryInput) (*repository.Entry, error) {
	fileName, err := s.files.Save(in.TrackerFile, TrackerFilesFolder)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to store tracker file")
	}

	var (
		entry       *repository.Entry
		replaceFile string
	)
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.entries.GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		owner, err := s.employees.GetByID(ctx, entry.EmployeeID)
		if err != nil {
			return err
		}

		if in.Production != nil {
			entry.Production = *in.Production
		}
		base := entry.ActualTarget
		if in.BaseTarget != nil {
			base = *in.BaseTarget
		}

		targets := domain.CalculateTargets(base, owner.UserTenure)
		entry.ActualTarget = targets.Actual
		entry.TenureTarget = targets.Tenure
		entry.BillableHours = domain.BillableHours(entry.Production, entry.TenureTarget)

		if fileName != "" {
			if entry.TrackerFile != nil {
				replaceFile = *entry.TrackerFile
			}
			entry.TrackerFile = &fileName
		}
		entry.UpdatedAt = s.now().UTC()

		return s.entries.Update(ctx, entry)
	})
	if err != nil {
		s.discard(fileName)
		return nil, storeFailure(s.logger, err, "failed to update tracker")
	}

	s.discard(replaceFile)
	s.publisher.PublishEntryUpdated(ctx, entry)
	s.publisher.PublishAPICalled(ctx, events.OpUpdateTracker, entry.EmployeeID, in.Device)
	return entry, nil
}

// Delete soft deletes an entry. Deleting an inactive entry succeeds.
func (s *TrackerService) Delete(ctx context.Context, id int64, device events.Device) error {
	var entry *repository.Entry
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.entries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return s.entries.Deactivate(ctx, id)
	})
	if err != nil {
		return storeFailure(s.logger, err, "failed to delete tracker")
	}

	s.publisher.PublishEntryDeleted(ctx, entry)
	s.publisher.PublishAPICalled(ctx, events.OpDeleteTracker, entry.EmployeeID, device)
	return nil
}

// discard removes an attachment that is no longer referenced.
func (s *TrackerService) discard(name string) {
	if name == "" {
		return
	}
	if err := s.files.Remove(TrackerFilesFolder, name); err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("failed to remove tracker file")
	}
}
