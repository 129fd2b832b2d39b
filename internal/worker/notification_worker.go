// Package worker delivers complaint notifications off the request path.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("notification queue full")

// NotificationWorker buffers published events and hands them to a delivery
// func on its own goroutine.
type NotificationWorker struct {
	deliver events.EventHandler
	logger  *zap.Logger
	queue   chan events.Event
}

// NewNotificationWorker builds a worker with room for size pending events.
func NewNotificationWorker(deliver events.EventHandler, logger *zap.Logger, size int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 1
	}
	return &NotificationWorker{
		deliver: deliver,
		logger:  logger,
		queue:   make(chan events.Event, size),
	}
}

// Enqueue never blocks. A full queue drops the event.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("notification dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID))
		return ErrQueueFull
	}
}

// Run delivers events until ctx is cancelled, then drains whatever is still
// buffered before returning.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.handle(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-w.queue:
					w.handle(event)
				default:
					return
				}
			}
		}
	}
}

func (w *NotificationWorker) handle(event events.Event) {
	// the publishing request may be long gone
	if err := w.deliver(context.Background(), event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

// StartNotificationWorker wires notifications to the dispatcher. With a
// positive queueSize delivery happens on a background goroutine; otherwise
// handlers run synchronously inside Publish. The returned func stops the
// worker after draining the queue.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, dispatcher events.Dispatcher, logger *zap.Logger, queueSize int) func() {
	if notifications == nil {
		return func() {}
	}
	if queueSize <= 0 || dispatcher == nil {
		notifications.RegisterHandlers()
		return func() {}
	}

	w := NewNotificationWorker(notifications.Deliver, logger, queueSize)
	events.SubscribeAll(dispatcher, w.Enqueue)

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(runCtx)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
