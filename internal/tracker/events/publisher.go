package events

import (
	"context"
	"time"

	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/logger"
	"github.com/tfshrms/worktracker/pkg/messaging"
)

// Operation names recorded in api_call_logs.
const (
	OpAddTracker    = "add_tracker"
	OpUpdateTracker = "update_tracker"
	OpDeleteTracker = "delete_tracker"
	OpViewTrackers  = "view_trackers"
	OpViewDaily     = "view_daily_trackers"
	OpAddTarget     = "add_monthly_target"
	OpUpdateTarget  = "update_monthly_target"
	OpDeleteTarget  = "delete_monthly_target"
	OpListTargets   = "list_monthly_targets"
	OpViewTarget    = "view_monthly_target"
)

// Publisher is the subset of messaging.Publisher the tracker uses.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Device identifies the client that made a call.
type Device struct {
	ID   string
	Type string
}

// TrackerEventPublisher publishes tracker events. Publishing never fails
// the caller; errors are logged.
type TrackerEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewTrackerEventPublisher creates a new tracker event publisher
func NewTrackerEventPublisher(publisher Publisher, log *logger.Logger) *TrackerEventPublisher {
	return &TrackerEventPublisher{
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (p *TrackerEventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

func entryEvent(e *repository.Entry) messaging.TrackerEntryEvent {
	return messaging.TrackerEntryEvent{
		TrackerID:  e.ID,
		EmployeeID: e.EmployeeID,
		TaskID:     e.TaskID,
		ProjectID:  e.ProjectID,
		Production: e.Production.String(),
	}
}

// PublishEntryCreated publishes a tracker created event
func (p *TrackerEventPublisher) PublishEntryCreated(ctx context.Context, e *repository.Entry) {
	p.publish(ctx, messaging.EventTrackerCreated, entryEvent(e))
}

// PublishEntryUpdated publishes a tracker updated event
func (p *TrackerEventPublisher) PublishEntryUpdated(ctx context.Context, e *repository.Entry) {
	p.publish(ctx, messaging.EventTrackerUpdated, entryEvent(e))
}

// PublishEntryDeleted publishes a tracker deleted event
func (p *TrackerEventPublisher) PublishEntryDeleted(ctx context.Context, e *repository.Entry) {
	data := entryEvent(e)
	data.Production = ""
	p.publish(ctx, messaging.EventTrackerDeleted, data)
}

func targetEvent(t *repository.MonthlyTarget) messaging.MonthlyTargetEvent {
	return messaging.MonthlyTargetEvent{
		TargetID:   t.ID,
		EmployeeID: t.EmployeeID,
		MonthYear:  t.MonthYear,
	}
}

// PublishTargetCreated publishes a monthly target created event
func (p *TrackerEventPublisher) PublishTargetCreated(ctx context.Context, t *repository.MonthlyTarget) {
	p.publish(ctx, messaging.EventMonthlyTargetCreated, targetEvent(t))
}

// PublishTargetUpdated publishes a monthly target updated event
func (p *TrackerEventPublisher) PublishTargetUpdated(ctx context.Context, t *repository.MonthlyTarget) {
	p.publish(ctx, messaging.EventMonthlyTargetUpdated, targetEvent(t))
}

// PublishTargetDeleted publishes a monthly target deleted event
func (p *TrackerEventPublisher) PublishTargetDeleted(ctx context.Context, t *repository.MonthlyTarget) {
	p.publish(ctx, messaging.EventMonthlyTargetDeleted, targetEvent(t))
}

// PublishAPICalled records an operation call for the audit log.
func (p *TrackerEventPublisher) PublishAPICalled(ctx context.Context, operation string, employeeID int64, device Device) {
	p.publish(ctx, messaging.EventAPICalled, messaging.APICalledEvent{
		Operation:  operation,
		EmployeeID: employeeID,
		DeviceID:   device.ID,
		DeviceType: device.Type,
		CalledAt:   p.now().UTC(),
	})
}
