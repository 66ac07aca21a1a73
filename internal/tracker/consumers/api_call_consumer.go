package consumers

import (
	"context"

	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/logger"
	"github.com/tfshrms/worktracker/pkg/messaging"
)

// APICallStore persists audit rows.
type APICallStore interface {
	Insert(ctx context.Context, l *repository.APICallLog) error
}

// APICallConsumer writes audit.api.called events to api_call_logs.
type APICallConsumer struct {
	consumer *messaging.Consumer
	store    APICallStore
	logger   *logger.Logger
}

// NewAPICallConsumer declares queue, binds it to the audit events on exchange
// and registers the handler.
func NewAPICallConsumer(rmq *messaging.RabbitMQ, exchange, queue string, store APICallStore, log *logger.Logger) (*APICallConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, queue, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(exchange, "audit.api.#"); err != nil {
		return nil, err
	}

	c := &APICallConsumer{
		consumer: consumer,
		store:    store,
		logger:   log,
	}
	consumer.RegisterHandler(messaging.EventAPICalled, c.handleAPICalled)

	return c, nil
}

// Start starts consuming messages
func (c *APICallConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *APICallConsumer) handleAPICalled(ctx context.Context, event *messaging.Event) error {
	var data messaging.APICalledEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	row := &repository.APICallLog{
		EventID:   event.ID,
		Operation: data.Operation,
		CalledAt:  data.CalledAt,
	}
	if data.EmployeeID != 0 {
		row.EmployeeID = &data.EmployeeID
	}
	if data.DeviceID != "" {
		row.DeviceID = &data.DeviceID
	}
	if data.DeviceType != "" {
		row.DeviceType = &data.DeviceType
	}
	if row.CalledAt.IsZero() {
		row.CalledAt = event.Timestamp
	}

	if err := c.store.Insert(ctx, row); err != nil {
		return err
	}

	c.logger.WithEmployeeID(data.EmployeeID).Debug().
		Str("operation", data.Operation).
		Msg("api call logged")
	return nil
}
