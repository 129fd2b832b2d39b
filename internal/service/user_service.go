package service

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// UserService serves the admin-facing user directory.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ListNavigators returns every navigator ordered by full name.
func (s *UserService) ListNavigators(ctx context.Context, caller domain.Caller) ([]domain.User, error) {
	return s.listByRole(ctx, caller, domain.RoleNavigator)
}

// ListAdmins returns every admin ordered by full name. Used to pick an
// escalation target.
func (s *UserService) ListAdmins(ctx context.Context, caller domain.Caller) ([]domain.User, error) {
	return s.listByRole(ctx, caller, domain.RoleAdmin)
}

func (s *UserService) listByRole(ctx context.Context, caller domain.Caller, role domain.Role) ([]domain.User, error) {
	if err := authorize(caller, ActionListDirectory); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
