package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	minTitleLength       = 3
	minDescriptionLength = 10
	minReasonLength      = 5
)

// ComplaintService runs the complaint lifecycle.
type ComplaintService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    TransitionRecorder
	stats      StatsCache
	logger     *zap.Logger
	now        func() time.Time
}

// TransitionRecorder counts status transitions.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, from, to domain.ComplaintStatus)
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    TransitionRecorder
	// StatsCache is invalidated after every committed mutation. May be nil.
	StatsCache StatsCache
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// SubmitInput describes a new complaint.
type SubmitInput struct {
	Title       string
	Description string
	Category    *string
}

// AssignInput describes an assignment. ExpectedResolutionDate is RFC 3339.
type AssignInput struct {
	NavigatorID            string
	ExpectedResolutionDate *string
}

// EscalateInput describes an escalation to an admin.
type EscalateInput struct {
	TargetAdminID string
	Reason        string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		stats:      deps.StatsCache,
		logger:     logger,
		now:        clock,
	}
}

// Submit files a new pending complaint owned by the caller.
func (s *ComplaintService) Submit(ctx context.Context, caller domain.Caller, input SubmitInput) (*domain.Complaint, error) {
	if err := authorize(caller, ActionSubmit); err != nil {
		return nil, err
	}
	// lengths count the text as submitted, surrounding whitespace included
	title := input.Title
	description := input.Description
	details := map[string]any{}
	if utf8.RuneCountInString(title) < minTitleLength {
		details["title"] = "must be at least 3 characters"
	}
	if utf8.RuneCountInString(description) < minDescriptionLength {
		details["description"] = "must be at least 10 characters"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid complaint", details)
	}

	now := s.now()
	complaint := &domain.Complaint{
		UserID:      caller.UserID,
		Title:       title,
		Description: description,
		Category:    trimmedOrNil(input.Category),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Complaints().Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.afterCommit(ctx, caller, events.EventComplaintSubmitted, complaint.ID, events.ComplaintSubmittedPayload{
		Title:    complaint.Title,
		Category: complaint.Category,
	})
	return complaint, nil
}

// List returns the complaints visible to the caller, newest first.
func (s *ComplaintService) List(ctx context.Context, caller domain.Caller, status *domain.ComplaintStatus) ([]domain.Complaint, error) {
	if err := authorize(caller, ActionList); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		status = nil
	}
	complaints, err := s.store.Complaints().List(ctx, listScope(caller, status))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// Get returns a single complaint. Complaints outside the caller's scope are
// reported as not found.
func (s *ComplaintService) Get(ctx context.Context, caller domain.Caller, complaintID string) (*domain.Complaint, error) {
	if err := authorize(caller, ActionView); err != nil {
		return nil, err
	}
	if err := validComplaintID(complaintID); err != nil {
		return nil, err
	}
	complaint, err := s.store.Complaints().GetByID(ctx, complaintID)
	if err != nil {
		return nil, complaintLookupError(err, complaintID)
	}
	if !canView(caller, complaint) {
		return nil, complaintNotFound(complaintID)
	}
	return complaint, nil
}

// History returns the status trail of a visible complaint, oldest first.
func (s *ComplaintService) History(ctx context.Context, caller domain.Caller, complaintID string) ([]domain.StatusHistory, error) {
	if _, err := s.Get(ctx, caller, complaintID); err != nil {
		return nil, err
	}
	entries, err := s.store.History().ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// UpdateStatus moves a complaint to newStatus. Any status may follow any
// other; only roles and ownership are enforced.
func (s *ComplaintService) UpdateStatus(ctx context.Context, caller domain.Caller, complaintID string, newStatus domain.ComplaintStatus) (*domain.Complaint, error) {
	if err := authorize(caller, ActionUpdateStatus); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(newStatus)})
	}
	if err := validComplaintID(complaintID); err != nil {
		return nil, err
	}

	var (
		updated   *domain.Complaint
		oldStatus domain.ComplaintStatus
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint, err := tx.Complaints().GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return complaintLookupError(err, complaintID)
		}
		if !canMutateStatus(caller, complaint) {
			return apperrors.NewForbidden("You can only update complaints assigned to you")
		}

		now := s.now()
		oldStatus = complaint.Status
		if oldStatus == domain.StatusPending && newStatus == domain.StatusInProgress && complaint.RespondedAt == nil {
			complaint.RespondedAt = &now
		}
		if oldStatus != newStatus {
			if err := tx.History().Append(ctx, &domain.StatusHistory{
				ComplaintID: complaint.ID,
				OldStatus:   oldStatus,
				NewStatus:   newStatus,
				UpdatedBy:   caller.UserID,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		}
		complaint.Status = newStatus
		complaint.UpdatedAt = now
		if err := tx.Complaints().Update(ctx, complaint); err != nil {
			return err
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if oldStatus != newStatus {
		s.recordTransition(ctx, oldStatus, newStatus)
		s.afterCommit(ctx, caller, events.EventComplaintStatusChanged, updated.ID, events.ComplaintStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		})
	}
	return updated, nil
}

// Assign hands a complaint to a navigator. The navigator's role is not
// checked; the calling admin is trusted.
func (s *ComplaintService) Assign(ctx context.Context, caller domain.Caller, complaintID string, input AssignInput) (*domain.Complaint, error) {
	if err := authorize(caller, ActionAssign); err != nil {
		return nil, err
	}
	navigatorID := strings.TrimSpace(input.NavigatorID)
	if _, err := uuid.Parse(navigatorID); err != nil {
		return nil, apperrors.NewValidationError("navigatorId must be a UUID", map[string]any{"navigatorId": input.NavigatorID})
	}
	var expected *time.Time
	if input.ExpectedResolutionDate != nil && strings.TrimSpace(*input.ExpectedResolutionDate) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*input.ExpectedResolutionDate))
		if err != nil {
			return nil, apperrors.NewValidationError("expectedResolutionDate must be an ISO-8601 timestamp",
				map[string]any{"expectedResolutionDate": *input.ExpectedResolutionDate})
		}
		expected = &parsed
	}
	if err := validComplaintID(complaintID); err != nil {
		return nil, err
	}

	var updated *domain.Complaint
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint, err := tx.Complaints().GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return complaintLookupError(err, complaintID)
		}
		complaint.AssignedHandlerID = &navigatorID
		complaint.ExpectedResolutionDate = expected
		complaint.UpdatedAt = s.now()
		if err := tx.Complaints().Update(ctx, complaint); err != nil {
			return err
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.afterCommit(ctx, caller, events.EventComplaintAssigned, updated.ID, events.ComplaintAssignedPayload{
		HandlerID:              navigatorID,
		ExpectedResolutionDate: expected,
	})
	return updated, nil
}

// Escalate reassigns a complaint to an admin and forces it to escalated.
func (s *ComplaintService) Escalate(ctx context.Context, caller domain.Caller, complaintID string, input EscalateInput) (*domain.Complaint, error) {
	if err := authorize(caller, ActionEscalate); err != nil {
		return nil, err
	}
	reason := input.Reason
	if utf8.RuneCountInString(reason) < minReasonLength {
		return nil, apperrors.NewValidationError("invalid escalation", map[string]any{"reason": "must be at least 5 characters"})
	}
	targetID := strings.TrimSpace(input.TargetAdminID)
	if _, err := uuid.Parse(targetID); err != nil {
		return nil, apperrors.NewValidationError("targetAdminId must be a UUID", map[string]any{"targetAdminId": input.TargetAdminID})
	}

	target, err := s.store.Users().GetByID(ctx, targetID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}
	if target == nil || target.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("Target user must be an admin", map[string]any{"targetAdminId": targetID})
	}
	if err := validComplaintID(complaintID); err != nil {
		return nil, err
	}

	var (
		updated   *domain.Complaint
		oldStatus domain.ComplaintStatus
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		complaint, err := tx.Complaints().GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return complaintLookupError(err, complaintID)
		}
		now := s.now()
		oldStatus = complaint.Status
		if oldStatus != domain.StatusEscalated {
			if err := tx.History().Append(ctx, &domain.StatusHistory{
				ComplaintID: complaint.ID,
				OldStatus:   oldStatus,
				NewStatus:   domain.StatusEscalated,
				UpdatedBy:   caller.UserID,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		}
		complaint.Status = domain.StatusEscalated
		complaint.AssignedHandlerID = &targetID
		complaint.EscalatedAt = &now
		complaint.EscalationReason = &reason
		complaint.UpdatedAt = now
		if err := tx.Complaints().Update(ctx, complaint); err != nil {
			return err
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if oldStatus != domain.StatusEscalated {
		s.recordTransition(ctx, oldStatus, domain.StatusEscalated)
	}
	s.afterCommit(ctx, caller, events.EventComplaintEscalated, updated.ID, events.ComplaintEscalatedPayload{
		OldStatus:     oldStatus,
		TargetAdminID: targetID,
		Reason:        reason,
	})
	return updated, nil
}

func complaintNotFound(complaintID string) error {
	return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
}

// validComplaintID rejects ids that can never match a stored complaint.
func validComplaintID(complaintID string) error {
	if _, err := uuid.Parse(complaintID); err != nil {
		return complaintNotFound(complaintID)
	}
	return nil
}

func complaintLookupError(err error, complaintID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return complaintNotFound(complaintID)
	}
	return err
}

func (s *ComplaintService) recordTransition(ctx context.Context, from, to domain.ComplaintStatus) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordTransition(ctx, from, to)
}

// afterCommit invalidates cached stats before returning to the caller, then
// publishes the event.
func (s *ComplaintService) afterCommit(ctx context.Context, caller domain.Caller, eventType events.EventType, complaintID string, payload any) {
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.logger.Warn("stats cache invalidation failed",
				zap.String("event_type", string(eventType)),
				zap.String("complaint_id", complaintID),
				zap.Error(err))
		}
	}
	if s.dispatcher == nil {
		return
	}
	// handler failures never undo a committed mutation
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		Actor:       events.Actor{UserID: caller.UserID, Role: caller.Role},
		Timestamp:   s.now(),
		Payload:     payload,
	})
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
