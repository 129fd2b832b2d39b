package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestAuthorizeAllowList(t *testing.T) {
	allowed := map[Action][]domain.Role{
		ActionSubmit:        {domain.RoleUser, domain.RoleAdmin, domain.RoleNavigator},
		ActionList:          {domain.RoleUser, domain.RoleAdmin, domain.RoleNavigator},
		ActionView:          {domain.RoleUser, domain.RoleAdmin, domain.RoleNavigator},
		ActionUpdateStatus:  {domain.RoleAdmin, domain.RoleNavigator},
		ActionAssign:        {domain.RoleAdmin},
		ActionEscalate:      {domain.RoleAdmin},
		ActionViewStats:     {domain.RoleAdmin},
		ActionListDirectory: {domain.RoleAdmin},
	}

	for action, roles := range allowed {
		for _, role := range domain.Roles {
			err := authorize(domain.Caller{UserID: "u-1", Role: role}, action)
			if containsRole(roles, role) {
				assert.NoError(t, err, "%s as %s", action, role)
			} else {
				assert.True(t, apperrors.IsForbidden(err), "%s as %s", action, role)
			}
		}
	}
}

func TestAuthorizeRejectsUnresolvedCaller(t *testing.T) {
	tests := []struct {
		name   string
		caller domain.Caller
	}{
		{name: "empty", caller: domain.Caller{}},
		{name: "missing id", caller: domain.Caller{Role: domain.RoleAdmin}},
		{name: "unknown role", caller: domain.Caller{UserID: "u-1", Role: "superuser"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorize(tt.caller, ActionSubmit)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
		})
	}
}

func TestUnknownActionAllowsNobody(t *testing.T) {
	assert.Empty(t, AllowedRoles("delete_everything"))
	err := authorize(domain.Caller{UserID: "u-1", Role: domain.RoleAdmin}, "delete_everything")
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCanMutateStatus(t *testing.T) {
	handler := "nav-1"
	assigned := &domain.Complaint{UserID: "user-1", AssignedHandlerID: &handler}
	unassigned := &domain.Complaint{UserID: "user-1"}

	tests := []struct {
		name      string
		caller    domain.Caller
		complaint *domain.Complaint
		want      bool
	}{
		{name: "admin unassigned", caller: domain.Caller{UserID: "admin-1", Role: domain.RoleAdmin}, complaint: unassigned, want: true},
		{name: "assigned navigator", caller: domain.Caller{UserID: "nav-1", Role: domain.RoleNavigator}, complaint: assigned, want: true},
		{name: "other navigator", caller: domain.Caller{UserID: "nav-2", Role: domain.RoleNavigator}, complaint: assigned, want: false},
		{name: "navigator unassigned", caller: domain.Caller{UserID: "nav-1", Role: domain.RoleNavigator}, complaint: unassigned, want: false},
		{name: "owner user", caller: domain.Caller{UserID: "user-1", Role: domain.RoleUser}, complaint: assigned, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canMutateStatus(tt.caller, tt.complaint))
		})
	}
}

func TestListScope(t *testing.T) {
	resolved := domain.StatusResolved

	admin := listScope(domain.Caller{UserID: "a", Role: domain.RoleAdmin}, &resolved)
	assert.Nil(t, admin.UserID)
	assert.Nil(t, admin.AssignedHandlerID)
	assert.Equal(t, &resolved, admin.Status)

	nav := listScope(domain.Caller{UserID: "n", Role: domain.RoleNavigator}, nil)
	assert.Nil(t, nav.UserID)
	if assert.NotNil(t, nav.AssignedHandlerID) {
		assert.Equal(t, "n", *nav.AssignedHandlerID)
	}

	user := listScope(domain.Caller{UserID: "u", Role: domain.RoleUser}, nil)
	assert.Nil(t, user.AssignedHandlerID)
	if assert.NotNil(t, user.UserID) {
		assert.Equal(t, "u", *user.UserID)
	}
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
