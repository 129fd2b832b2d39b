package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestUserDirectory(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store.Users())

	navigators, err := svc.ListNavigators(f.ctx, callerOf(f.admin))
	require.NoError(t, err)
	require.Len(t, navigators, 2)
	assert.Equal(t, "Nina Navigator", navigators[0].FullName)
	assert.Equal(t, "Noah Navigator", navigators[1].FullName)

	admins, err := svc.ListAdmins(f.ctx, callerOf(f.admin))
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "Aaron Admin", admins[0].FullName)
	for _, a := range admins {
		assert.Equal(t, domain.RoleAdmin, a.Role)
	}

	_, err = svc.ListAdmins(f.ctx, callerOf(f.navigator))
	assert.True(t, apperrors.IsForbidden(err))
}
