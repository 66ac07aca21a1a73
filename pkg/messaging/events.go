package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Tracker entry events
	EventTrackerCreated = "tracker.entry.created"
	EventTrackerUpdated = "tracker.entry.updated"
	EventTrackerDeleted = "tracker.entry.deleted"

	// Monthly target events
	EventMonthlyTargetCreated = "tracker.target.created"
	EventMonthlyTargetUpdated = "tracker.target.updated"
	EventMonthlyTargetDeleted = "tracker.target.deleted"

	// Audit events
	EventAPICalled = "audit.api.called"
)

// Event is the envelope every message on the bus carries.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// TrackerEntryEvent is published when a tracker entry is created, updated or deactivated.
type TrackerEntryEvent struct {
	TrackerID  int64  `json:"tracker_id"`
	EmployeeID int64  `json:"employee_id"`
	TaskID     int64  `json:"task_id"`
	ProjectID  int64  `json:"project_id"`
	Production string `json:"production,omitempty"`
}

// MonthlyTargetEvent is published when a monthly target changes.
type MonthlyTargetEvent struct {
	TargetID   int64  `json:"target_id"`
	EmployeeID int64  `json:"employee_id"`
	MonthYear  string `json:"month_year"`
}

// APICalledEvent records that an operation was invoked from a device.
type APICalledEvent struct {
	Operation  string    `json:"operation"`
	EmployeeID int64     `json:"employee_id"`
	DeviceID   string    `json:"device_id,omitempty"`
	DeviceType string    `json:"device_type,omitempty"`
	CalledAt   time.Time `json:"called_at"`
}
