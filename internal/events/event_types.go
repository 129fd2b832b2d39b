package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintEscalated     EventType = "complaint_escalated"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventComplaintSubmitted,
	EventComplaintStatusChanged,
	EventComplaintAssigned,
	EventComplaintEscalated,
}

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaint_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Title    string  `json:"title"`
	Category *string `json:"category,omitempty"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	HandlerID              string     `json:"handler_id"`
	ExpectedResolutionDate *time.Time `json:"expected_resolution_date,omitempty"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	OldStatus     domain.ComplaintStatus `json:"old_status"`
	TargetAdminID string                 `json:"target_admin_id"`
	Reason        string                 `json:"reason"`
}
