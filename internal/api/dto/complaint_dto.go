package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignComplaintRequest payload.
type AssignComplaintRequest struct {
	NavigatorID            string  `json:"navigatorId"`
	ExpectedResolutionDate *string `json:"expectedResolutionDate"`
}

// EscalateComplaintRequest payload.
type EscalateComplaintRequest struct {
	TargetAdminID string `json:"targetAdminId"`
	Reason        string `json:"reason"`
}

// ComplaintResponse is the wire form of a complaint.
type ComplaintResponse struct {
	ID                     string                 `json:"id"`
	UserID                 string                 `json:"userId"`
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	Category               *string                `json:"category"`
	Status                 domain.ComplaintStatus `json:"status"`
	AssignedNavigatorID    *string                `json:"assignedNavigatorId"`
	ExpectedResolutionDate *time.Time             `json:"expectedResolutionDate"`
	RespondedAt            *time.Time             `json:"respondedAt"`
	EscalatedAt            *time.Time             `json:"escalatedAt"`
	EscalationReason       *string                `json:"escalationReason"`
	CreatedAt              time.Time              `json:"createdAt"`
	UpdatedAt              time.Time              `json:"updatedAt"`
}

// StatusHistoryResponse is one entry of a complaint's status trail.
type StatusHistoryResponse struct {
	ID          string                 `json:"id"`
	ComplaintID string                 `json:"complaintId"`
	OldStatus   domain.ComplaintStatus `json:"oldStatus"`
	NewStatus   domain.ComplaintStatus `json:"newStatus"`
	UpdatedBy   string                 `json:"updatedBy"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// NavigatorUpdateResponse describes a recent navigator status change.
type NavigatorUpdateResponse struct {
	ID             string                 `json:"id"`
	ComplaintID    string                 `json:"complaintId"`
	ComplaintTitle string                 `json:"complaintTitle"`
	NavigatorName  string                 `json:"navigatorName"`
	NavigatorEmail string                 `json:"navigatorEmail"`
	OldStatus      domain.ComplaintStatus `json:"oldStatus"`
	NewStatus      domain.ComplaintStatus `json:"newStatus"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// DashboardResponse bundles the admin overview.
type DashboardResponse struct {
	Stats            domain.Stats              `json:"stats"`
	Overdue          []ComplaintResponse       `json:"overdue"`
	NavigatorUpdates []NavigatorUpdateResponse `json:"navigatorUpdates"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:                     c.ID,
		UserID:                 c.UserID,
		Title:                  c.Title,
		Description:            c.Description,
		Category:               c.Category,
		Status:                 c.Status,
		AssignedNavigatorID:    c.AssignedHandlerID,
		ExpectedResolutionDate: c.ExpectedResolutionDate,
		RespondedAt:            c.RespondedAt,
		EscalatedAt:            c.EscalatedAt,
		EscalationReason:       c.EscalationReason,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

// NewComplaintList maps a slice, never returning nil.
func NewComplaintList(complaints []domain.Complaint) []ComplaintResponse {
	items := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, NewComplaintResponse(&complaints[i]))
	}
	return items
}

// NewStatusHistoryList maps history entries.
func NewStatusHistoryList(entries []domain.StatusHistory) []StatusHistoryResponse {
	items := make([]StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, StatusHistoryResponse{
			ID:          e.ID,
			ComplaintID: e.ComplaintID,
			OldStatus:   e.OldStatus,
			NewStatus:   e.NewStatus,
			UpdatedBy:   e.UpdatedBy,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	return items
}

// NewNavigatorUpdateList maps navigator updates.
func NewNavigatorUpdateList(updates []domain.NavigatorUpdate) []NavigatorUpdateResponse {
	items := make([]NavigatorUpdateResponse, 0, len(updates))
	for _, u := range updates {
		items = append(items, NavigatorUpdateResponse{
			ID:             u.ID,
			ComplaintID:    u.ComplaintID,
			ComplaintTitle: u.ComplaintTitle,
			NavigatorName:  u.NavigatorName,
			NavigatorEmail: u.NavigatorEmail,
			OldStatus:      u.OldStatus,
			NewStatus:      u.NewStatus,
			UpdatedAt:      u.UpdatedAt,
		})
	}
	return items
}
