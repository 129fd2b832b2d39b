package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
)

// NotificationService logs complaint events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes the handlers directly on the dispatcher, so
// they run inside Publish.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for eventType, handler := range n.handlers() {
		n.dispatcher.Subscribe(eventType, handler)
	}
}

// Deliver runs the handler for a single event. Used by the asynchronous
// notification worker.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	if handler, ok := n.handlers()[event.Type]; ok {
		return handler(ctx, event)
	}
	return nil
}

func (n *NotificationService) handlers() map[events.EventType]events.EventHandler {
	return map[events.EventType]events.EventHandler{
		events.EventComplaintSubmitted:     n.handleComplaintSubmitted,
		events.EventComplaintStatusChanged: n.handleComplaintStatusChanged,
		events.EventComplaintAssigned:      n.handleComplaintAssigned,
		events.EventComplaintEscalated:     n.handleComplaintEscalated,
	}
}

func (n *NotificationService) handleComplaintSubmitted(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintSubmitted", eventFields(event)...)
	return nil
}

func (n *NotificationService) handleComplaintStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintStatusChanged", eventFields(event)...)
	return nil
}

func (n *NotificationService) handleComplaintAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintAssigned", eventFields(event)...)
	return nil
}

func (n *NotificationService) handleComplaintEscalated(_ context.Context, event events.Event) error {
	n.logger.Warn("ComplaintEscalated", eventFields(event)...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
		zap.Any("payload", event.Payload),
	}
}
