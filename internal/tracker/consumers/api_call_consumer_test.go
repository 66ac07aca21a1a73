package consumers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfshrms/worktracker/internal/tracker/repository"
	"github.com/tfshrms/worktracker/pkg/logger"
	"github.com/tfshrms/worktracker/pkg/messaging"
)

type fakeStore struct {
	rows []*repository.APICallLog
	err  error
}

func (f *fakeStore) Insert(_ context.Context, l *repository.APICallLog) error {
	f.rows = append(f.rows, l)
	return f.err
}

func newEvent(t *testing.T, data messaging.APICalledEvent) *messaging.Event {
	t.Helper()
	event, err := messaging.NewEvent(messaging.EventAPICalled, "tracker-service", "", data)
	require.NoError(t, err)
	return event
}

func TestHandleAPICalled(t *testing.T) {
	store := &fakeStore{}
	c := &APICallConsumer{store: store, logger: logger.Nop()}
	calledAt := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	event := newEvent(t, messaging.APICalledEvent{
		Operation: "add_tracker", EmployeeID: 3, DeviceID: "d-1", CalledAt: calledAt,
	})
	require.NoError(t, c.handleAPICalled(context.Background(), event))

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	assert.Equal(t, event.ID, row.EventID)
	assert.Equal(t, "add_tracker", row.Operation)
	assert.Equal(t, int64(3), *row.EmployeeID)
	assert.Equal(t, "d-1", *row.DeviceID)
	assert.Nil(t, row.DeviceType)
	assert.True(t, calledAt.Equal(row.CalledAt))
}

func TestHandleAPICalled_DefaultsCallTime(t *testing.T) {
	store := &fakeStore{}
	c := &APICallConsumer{store: store, logger: logger.Nop()}

	event := newEvent(t, messaging.APICalledEvent{Operation: "view_trackers"})
	require.NoError(t, c.handleAPICalled(context.Background(), event))

	assert.Nil(t, store.rows[0].EmployeeID)
	assert.True(t, event.Timestamp.Equal(store.rows[0].CalledAt))
}

func TestHandleAPICalled_StoreErrorPropagates(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("db down")}
	c := &APICallConsumer{store: store, logger: logger.Nop()}

	err := c.handleAPICalled(context.Background(), newEvent(t, messaging.APICalledEvent{Operation: "x"}))
	assert.Error(t, err)
}
