package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// UsersHandler exposes the admin user directory.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Navigators handles GET /users/navigators.
func (h *UsersHandler) Navigators(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListNavigators(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}

// Admins handles GET /users/admins.
func (h *UsersHandler) Admins(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListAdmins(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserList(users)})
}
