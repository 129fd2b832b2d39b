package domain

import (
	"fmt"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusRejected   ComplaintStatus = "rejected"
	StatusEscalated  ComplaintStatus = "escalated"
)

// Statuses lists every status in lifecycle order.
var Statuses = []ComplaintStatus{
	StatusPending,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
	StatusEscalated,
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected, StatusEscalated:
		return true
	default:
		return false
	}
}

// IsActive reports whether the complaint still counts as an open case.
func (s ComplaintStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusInProgress:
		return true
	case StatusResolved, StatusRejected, StatusEscalated:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether s ends the lifecycle.
func (s ComplaintStatus) IsTerminal() bool {
	switch s {
	case StatusResolved, StatusRejected:
		return true
	case StatusPending, StatusInProgress, StatusEscalated:
		return false
	default:
		return false
	}
}

func (s ComplaintStatus) String() string { return string(s) }

// ParseComplaintStatus converts raw input into a ComplaintStatus.
func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	status := ComplaintStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("unknown complaint status %q", raw)
	}
	return status, nil
}

// Complaint is the aggregate tracked through the lifecycle.
//
// AssignedHandlerID holds whoever currently owns the complaint: a navigator
// after assignment, an admin after escalation.
type Complaint struct {
	ID                     string
	UserID                 string
	Title                  string
	Description            string
	Category               *string
	Status                 ComplaintStatus
	AssignedHandlerID      *string
	ExpectedResolutionDate *time.Time
	RespondedAt            *time.Time
	EscalatedAt            *time.Time
	EscalationReason       *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsOverdue reports whether the expected resolution date has passed
// without the complaint reaching resolved.
func (c *Complaint) IsOverdue(now time.Time) bool {
	if c.ExpectedResolutionDate == nil {
		return false
	}
	return c.ExpectedResolutionDate.Before(now) && c.Status != StatusResolved
}

// IsHandledBy reports whether userID is the assigned handler.
func (c *Complaint) IsHandledBy(userID string) bool {
	return c.AssignedHandlerID != nil && *c.AssignedHandlerID == userID
}
