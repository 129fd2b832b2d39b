package service

import (
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Action names an operation guarded by the role allow-list.
type Action string

const (
	ActionSubmit        Action = "submit"
	ActionList          Action = "list"
	ActionView          Action = "view"
	ActionUpdateStatus  Action = "update_status"
	ActionAssign        Action = "assign"
	ActionEscalate      Action = "escalate"
	ActionViewStats     Action = "view_stats"
	ActionListDirectory Action = "list_directory"
)

// AllowedRoles returns the roles permitted to perform action.
func AllowedRoles(action Action) []domain.Role {
	switch action {
	case ActionSubmit, ActionList, ActionView:
		return []domain.Role{domain.RoleUser, domain.RoleAdmin, domain.RoleNavigator}
	case ActionUpdateStatus:
		return []domain.Role{domain.RoleAdmin, domain.RoleNavigator}
	case ActionAssign, ActionEscalate, ActionViewStats, ActionListDirectory:
		return []domain.Role{domain.RoleAdmin}
	default:
		return nil
	}
}

// authorize checks the caller's role against the action's allow-list.
func authorize(caller domain.Caller, action Action) error {
	if caller.UserID == "" || !caller.Role.Valid() {
		return apperrors.NewUnauthorized("authentication required")
	}
	for _, role := range AllowedRoles(action) {
		if role == caller.Role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// canMutateStatus applies the per-complaint ownership rule on top of the
// allow-list: navigators may only touch complaints assigned to them.
func canMutateStatus(caller domain.Caller, complaint *domain.Complaint) bool {
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleNavigator:
		return complaint.IsHandledBy(caller.UserID)
	case domain.RoleUser:
		return false
	default:
		return false
	}
}

// canView reports whether the complaint falls inside the caller's list scope.
func canView(caller domain.Caller, complaint *domain.Complaint) bool {
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleNavigator:
		return complaint.IsHandledBy(caller.UserID)
	case domain.RoleUser:
		return complaint.UserID == caller.UserID
	default:
		return false
	}
}

// listScope returns the store filter restricting a listing to what the
// caller may see.
func listScope(caller domain.Caller, status *domain.ComplaintStatus) repository.ComplaintFilter {
	filter := repository.ComplaintFilter{Status: status}
	userID := caller.UserID
	switch caller.Role {
	case domain.RoleAdmin:
	case domain.RoleNavigator:
		filter.AssignedHandlerID = &userID
	case domain.RoleUser:
		filter.UserID = &userID
	default:
		// unknown roles see only their own complaints
		filter.UserID = &userID
	}
	return filter
}
