package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/errors"
	"github.com/tfshrms/worktracker/pkg/logger"
)

// AddTargetInput is a new monthly target. CreatedAt defaults to now.
type AddTargetInput struct {
	EmployeeID         int64
	MonthYear          string
	MonthlyTarget      decimal.Decimal
	ExtraAssignedHours *decimal.Decimal
	WorkingDays        int
	CreatedAt          *time.Time
	Device             events.Device
}

// UpdateTargetInput replaces the supplied fields of an active target.
type UpdateTargetInput struct {
	ID                 int64
	EmployeeID         *int64
	MonthYear          *string
	MonthlyTarget      *decimal.Decimal
	ExtraAssignedHours *decimal.Decimal
	WorkingDays        *int
	Device             events.Device
}

func (in UpdateTargetInput) empty() bool {
	return in.EmployeeID == nil && in.MonthYear == nil && in.MonthlyTarget == nil &&
		in.ExtraAssignedHours == nil && in.WorkingDays == nil
}

// MonthlyTargetService manages monthly targets
type MonthlyTargetService struct {
	tx        Transactor
	employees EmployeeStore
	targets   TargetStore
	publisher EventPublisher
	logger    *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewMonthlyTargetService creates a new monthly target service
func NewMonthlyTargetService(
	tx Transactor,
	employees EmployeeStore,
	targets TargetStore,
	publisher EventPublisher,
	loc *time.Location,
	log *logger.Logger,
) *MonthlyTargetService {
	if loc == nil {
		loc = time.UTC
	}
	return &MonthlyTargetService{
		tx:        tx,
		employees: employees,
		targets:   targets,
		publisher: publisher,
		logger:    log,
		loc:       loc,
		now:       time.Now,
	}
}

// canonicalMonth normalizes a month token and rejects tokens that are not a real month.
func canonicalMonth(raw string) (string, error) {
	token := domain.NormalizeMonth(raw)
	if token == "" {
		return "", errors.Required("month_year")
	}
	if _, ok := domain.ParseMonth(token); !ok {
		return "", errors.Invalid("month_year", "must look like Jan2025")
	}
	return token, nil
}

func (s *MonthlyTargetService) requireActiveEmployee(ctx context.Context, id int64) error {
	if _, err := s.employees.GetEligible(ctx, id); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NotFoundMessage("User not found or inactive")
		}
		return err
	}
	return nil
}

// Add creates an active target. A second active target for the same
// employee and month is a conflict.
func (s *MonthlyTargetService) Add(ctx context.Context, in AddTargetInput) (*repository.MonthlyTarget, error) {
	month, err := canonicalMonth(in.MonthYear)
	if err != nil {
		return nil, err
	}
	if in.WorkingDays < 0 {
		return nil, errors.Invalid("working_days", "must not be negative")
	}

	target := &repository.MonthlyTarget{
		EmployeeID:    in.EmployeeID,
		MonthYear:     month,
		MonthlyTarget: in.MonthlyTarget,
		WorkingDays:   in.WorkingDays,
		CreatedAt:     s.now().UTC(),
	}
	if in.ExtraAssignedHours != nil {
		target.ExtraAssignedHours = decimal.NewNullDecimal(*in.ExtraAssignedHours)
	}
	if in.CreatedAt != nil {
		target.CreatedAt = *in.CreatedAt
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.requireActiveEmployee(ctx, in.EmployeeID); err != nil {
			return err
		}
		return s.targets.Create(ctx, target)
	})
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to add monthly target")
	}

	s.publisher.PublishTargetCreated(ctx, target)
	s.publisher.PublishAPICalled(ctx, events.OpAddTarget, target.EmployeeID, in.Device)
	return target, nil
}

// Update applies a partial change to an active target.
func (s *MonthlyTargetService) Update(ctx context.Context, in UpdateTargetInput) (*repository.MonthlyTarget, error) {
	if in.empty() {
		return nil, errors.BadRequest("Nothing to update")
	}

	var month string
	if in.MonthYear != nil {
		var err error
		if month, err = canonicalMonth(*in.MonthYear); err != nil {
			return nil, err
		}
	}
	if in.WorkingDays != nil && *in.WorkingDays < 0 {
		return nil, errors.Invalid("working_days", "must not be negative")
	}

	var target *repository.MonthlyTarget
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.targets.GetActive(ctx, in.ID)
		if err != nil {
			return err
		}

		if in.EmployeeID != nil {
			if err := s.requireActiveEmployee(ctx, *in.EmployeeID); err != nil {
				return err
			}
			target.EmployeeID = *in.EmployeeID
		}
		if in.MonthYear != nil {
			target.MonthYear = month
		}
		if in.MonthlyTarget != nil {
			target.MonthlyTarget = *in.MonthlyTarget
		}
		if in.ExtraAssignedHours != nil {
			target.ExtraAssignedHours = decimal.NewNullDecimal(*in.ExtraAssignedHours)
		}
		if in.WorkingDays != nil {
			target.WorkingDays = *in.WorkingDays
		}

		return s.targets.Update(ctx, target)
	})
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to update monthly target")
	}

	s.publisher.PublishTargetUpdated(ctx, target)
	s.publisher.PublishAPICalled(ctx, events.OpUpdateTarget, target.EmployeeID, in.Device)
	return target, nil
}

// Delete soft deletes an active target.
func (s *MonthlyTargetService) Delete(ctx context.Context, id int64, device events.Device) error {
	var target *repository.MonthlyTarget
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if target, err = s.targets.GetActive(ctx, id); err != nil {
			return err
		}
		return s.targets.Deactivate(ctx, id)
	})
	if err != nil {
		return storeFailure(s.logger, err, "failed to delete monthly target")
	}

	s.publisher.PublishTargetDeleted(ctx, target)
	s.publisher.PublishAPICalled(ctx, events.OpDeleteTarget, target.EmployeeID, device)
	return nil
}

// TargetQuery selects monthly targets. ViewerID only attributes the API call.
type TargetQuery struct {
	ViewerID   int64
	EmployeeID *int64
	MonthYear  string
	Device     events.Device
}

// List returns active targets with their month's production totals.
func (s *MonthlyTargetService) List(ctx context.Context, q TargetQuery) ([]repository.MonthlyTargetSummary, error) {
	rows, err := s.targets.ListSummaries(ctx, repository.TargetFilter{
		EmployeeID: q.EmployeeID,
		MonthYear:  domain.NormalizeMonth(q.MonthYear),
	})
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to list monthly targets")
	}

	today := domain.CivilDate(s.now(), s.loc)
	for i := range rows {
		rows[i].WorkingDaysTillToday = workingDaysTillToday(&rows[i], today)
	}

	s.publisher.PublishAPICalled(ctx, events.OpListTargets, q.ViewerID, q.Device)
	return rows, nil
}

// View returns one active target with its month's production totals.
func (s *MonthlyTargetService) View(ctx context.Context, id, viewerID int64, device events.Device) (*repository.MonthlyTargetSummary, error) {
	row, err := s.targets.GetSummary(ctx, id)
	if err != nil {
		return nil, storeFailure(s.logger, err, "failed to fetch monthly target")
	}
	row.WorkingDaysTillToday = workingDaysTillToday(row, domain.CivilDate(s.now(), s.loc))

	s.publisher.PublishAPICalled(ctx, events.OpViewTarget, viewerID, device)
	return row, nil
}

func workingDaysTillToday(row *repository.MonthlyTargetSummary, today time.Time) int {
	first, ok := domain.ParseMonth(row.MonthYear)
	if !ok {
		return 0
	}

	dates := make([]time.Time, 0, len(row.WorkedDates))
	for _, raw := range row.WorkedDates {
		if d, err := time.Parse(domain.DateLayout, raw); err == nil {
			dates = append(dates, d)
		}
	}
	return domain.WindowFor(first, today).Elapsed(dates)
}
