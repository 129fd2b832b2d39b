package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	minPasswordLength = 8
	minFullNameLength = 2
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users               repository.UserRepository
	tokenMgr            *auth.TokenManager
	bcryptCost          int
	allowRoleOnRegister bool
	now                 func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Clock    func() time.Time
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	// Role is honored only when registration with a role is enabled.
	Role *domain.Role
}

// AuthResult is returned by successful register and login calls.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{
		users:               deps.UserRepo,
		tokenMgr:            tokens,
		bcryptCost:          cfg.Auth.BcryptCost,
		allowRoleOnRegister: cfg.Auth.AllowRoleOnRegister,
		now:                 clock,
	}
}

// Register creates an account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, input, s.allowRoleOnRegister)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Provision creates an account with the requested role regardless of the
// registration policy. Used by operator tooling to bootstrap admins.
func (s *AuthService) Provision(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, true)
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, honorRole bool) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	details := map[string]any{}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		details["email"] = "must be a valid email address"
	}
	switch {
	case utf8.RuneCountInString(input.Password) < minPasswordLength:
		details["password"] = "must be at least 8 characters"
	case len(input.Password) > auth.MaxPasswordBytes:
		details["password"] = "must be at most 72 bytes"
	}
	if utf8.RuneCountInString(fullName) < minFullNameLength {
		details["fullName"] = "must be at least 2 characters"
	}
	role := domain.RoleUser
	if input.Role != nil && honorRole {
		if !input.Role.Valid() {
			details["role"] = "must be one of user, admin, navigator"
		} else {
			role = *input.Role
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	if caller.UserID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": caller.UserID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
