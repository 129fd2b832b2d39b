package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"fullName"`
	Role     *string `json:"role"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserList maps a slice of users.
func NewUserList(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}
	return items
}
