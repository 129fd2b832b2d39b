package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler exposes complaint lifecycle and statistics endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	stats      *service.StatsService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, stats *service.StatsService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, stats: stats}
}

// Submit POST /complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.Submit(c.UserContext(), caller, service.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// List GET /complaints?status=.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var status *domain.ComplaintStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		// unknown values are ignored rather than rejected
		if parsed, err := domain.ParseComplaintStatus(raw); err == nil {
			status = &parsed
		}
	}
	complaints, err := h.complaints.List(c.UserContext(), caller, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// History GET /complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	entries, err := h.complaints.History(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatusHistoryList(entries)})
}

// UpdateStatus PATCH /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := domain.ParseComplaintStatus(strings.TrimSpace(req.Status))
	if err != nil {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}
	complaint, err := h.complaints.UpdateStatus(c.UserContext(), caller, c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Assign PATCH /complaints/:id/assign.
func (h *ComplaintsHandler) Assign(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.Assign(c.UserContext(), caller, c.Params("id"), service.AssignInput{
		NavigatorID:            req.NavigatorID,
		ExpectedResolutionDate: req.ExpectedResolutionDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Escalate PATCH /complaints/:id/escalate.
func (h *ComplaintsHandler) Escalate(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.EscalateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.Escalate(c.UserContext(), caller, c.Params("id"), service.EscalateInput{
		TargetAdminID: req.TargetAdminID,
		Reason:        req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Stats GET /complaints/stats.
func (h *ComplaintsHandler) Stats(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.stats.GetStats(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Overdue GET /complaints/overdue.
func (h *ComplaintsHandler) Overdue(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	complaints, err := h.stats.GetOverdueComplaints(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintList(complaints)})
}

// NavigatorUpdates GET /complaints/navigator-updates?limit=.
func (h *ComplaintsHandler) NavigatorUpdates(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		// non-numeric limits fall back to the default
		limit, _ = strconv.Atoi(raw)
	}
	updates, err := h.stats.GetNavigatorUpdates(c.UserContext(), caller, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewNavigatorUpdateList(updates)})
}

// Dashboard GET /complaints/dashboard.
func (h *ComplaintsHandler) Dashboard(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	dashboard, err := h.stats.Dashboard(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Stats:            dashboard.Stats,
		Overdue:          dto.NewComplaintList(dashboard.Overdue),
		NavigatorUpdates: dto.NewNavigatorUpdateList(dashboard.NavigatorUpdates),
	}})
}

func callerFrom(c *fiber.Ctx) (domain.Caller, error) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return domain.Caller{}, apperrors.NewUnauthorized("authentication required")
	}
	return caller, nil
}
