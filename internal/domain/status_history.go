package domain

import "time"

// StatusHistory is an immutable audit entry for a status transition.
type StatusHistory struct {
	ID          string
	ComplaintID string
	OldStatus   ComplaintStatus
	NewStatus   ComplaintStatus
	UpdatedBy   string
	UpdatedAt   time.Time
}

// NavigatorUpdate is a history entry enriched with who made it and on what.
type NavigatorUpdate struct {
	ID             string
	ComplaintID    string
	ComplaintTitle string
	NavigatorName  string
	NavigatorEmail string
	OldStatus      ComplaintStatus
	NewStatus      ComplaintStatus
	UpdatedAt      time.Time
}
