package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) deliver(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	rec := &recorder{}
	w := NewNotificationWorker(rec.deliver, zap.NewNop(), 1)

	require.NoError(t, w.Enqueue(context.Background(), events.Event{Type: events.EventComplaintSubmitted}))
	err := w.Enqueue(context.Background(), events.Event{Type: events.EventComplaintAssigned})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunDrainsOnCancel(t *testing.T) {
	rec := &recorder{}
	w := NewNotificationWorker(rec.deliver, zap.NewNop(), 8)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Enqueue(context.Background(), events.Event{Type: events.EventComplaintSubmitted}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)
	assert.Equal(t, 5, rec.len())
}

func TestDeliveryErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := NewNotificationWorker(func(context.Context, events.Event) error {
		return errors.New("smtp down")
	}, zap.New(core), 1)
	require.NoError(t, w.Enqueue(context.Background(), events.Event{Type: events.EventComplaintEscalated, ComplaintID: "c-1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "notification delivery failed", logs.All()[0].Message)
	assert.Equal(t, "c-1", logs.All()[0].ContextMap()["complaint_id"])
}

func TestStartNotificationWorkerAsync(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.New(core))

	stop := StartNotificationWorker(context.Background(), notifications, dispatcher, zap.NewNop(), 16)
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintSubmitted, ComplaintID: "c-1"}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintEscalated, ComplaintID: "c-1"}))
	stop()

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "ComplaintSubmitted", logs.All()[0].Message)
	assert.Equal(t, "ComplaintEscalated", logs.All()[1].Message)
}

func TestStartNotificationWorkerSync(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.New(core))

	stop := StartNotificationWorker(context.Background(), notifications, dispatcher, zap.NewNop(), 0)
	defer stop()
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintAssigned}))
	assert.Equal(t, 1, logs.Len(), "handlers run inside Publish")
}
