package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

// requestTransitions is the single authoritative transition table for
// ServiceRequest statuses. Every mutating operation consults it; no handler
// re-derives its own rules.
var requestTransitions = map[string][]string{
	models.RequestPending:         {models.RequestInReview, models.RequestCancelled},
	models.RequestInReview:        {models.RequestAccepted, models.RequestAwaitingPayment, models.RequestPending, models.RequestCancelled},
	models.RequestAccepted:        {models.RequestPaid},
	models.RequestAwaitingPayment: {models.RequestPaid},
	models.RequestPaid:            {},
	models.RequestCancelled:       {},
}

// phaseTransitions is the authoritative transition table for Project phases.
// COMPLETED has no outgoing edges; re-entering PRODUCTION from REVIEW models a
// client-requested revision loop.
var phaseTransitions = map[string][]string{
	models.PhasePreProduction: {models.PhaseProduction},
	models.PhaseProduction:    {models.PhaseReview},
	models.PhaseReview:        {models.PhaseProduction, models.PhaseCompleted},
	models.PhaseCompleted:     {},
}

// CanTransitionRequest reports whether a ServiceRequest may move from -> to.
func CanTransitionRequest(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPhase reports whether a Project may move from -> to.
func CanTransitionPhase(from, to string) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type LifecycleService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{
		db:            db,
		notifications: NewNotificationService(db),
	}
}

func (s *LifecycleService) creatorProfile(userID uint) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewForbidden("caller has no creator profile")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *LifecycleService) getRequest(id uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := s.db.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// AcceptRequest lets a creator claim a PENDING request, moving it to
// IN_REVIEW with the caller's profile assigned. The status and the unassigned
// creator slot are re-checked inside the transaction so two concurrent claims
// cannot both succeed; the loser gets an InvalidTransition.
func (s *LifecycleService) AcceptRequest(callerUserID, requestID uint) (*models.ServiceRequest, error) {
	profile, err := s.creatorProfile(callerUserID)
	if err != nil {
		return nil, err
	}

	req, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionRequest(req.Status, models.RequestInReview) {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot accept request in status %s", req.Status))
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ? AND creator_id IS NULL", requestID, models.RequestPending).
			Updates(map[string]interface{}{
				"creator_id":        profile.ID,
				"status":            models.RequestInReview,
				"status_updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewInvalidTransition("request was claimed by another creator")
		}

		event := models.ProjectEvent{
			RequestID:   &requestID,
			Type:        models.EventStatusChanged,
			Description: fmt.Sprintf("Request claimed by %s, now in review", profile.StudioName),
			ActorID:     &callerUserID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return s.notifications.CreateInTx(tx, req.UserID, models.NotifyRequestUpdate,
			"Your request is in review",
			fmt.Sprintf("%q is being reviewed by a creator.", req.Title),
			fmt.Sprintf("/requests/%d", requestID))
	})
	if err != nil {
		return nil, err
	}

	return s.getRequest(requestID)
}

// ApproveRequest lets the assigned creator move an IN_REVIEW request to
// AWAITING_PAYMENT, signalling the artist can pay.
func (s *LifecycleService) ApproveRequest(callerUserID, requestID uint) (*models.ServiceRequest, error) {
	profile, err := s.creatorProfile(callerUserID)
	if err != nil {
		return nil, err
	}

	req, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.CreatorID == nil || *req.CreatorID != profile.ID {
		return nil, response.NewForbidden("request is not assigned to caller")
	}
	if !CanTransitionRequest(req.Status, models.RequestAwaitingPayment) {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot approve request in status %s", req.Status))
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ?", requestID, req.Status).
			Updates(map[string]interface{}{
				"status":            models.RequestAwaitingPayment,
				"status_updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewInvalidTransition("request status changed concurrently")
		}

		event := models.ProjectEvent{
			RequestID:   &requestID,
			Type:        models.EventStatusChanged,
			Description: "Request approved, awaiting payment",
			ActorID:     &callerUserID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return s.notifications.CreateInTx(tx, req.UserID, models.NotifyRequestUpdate,
			"Request approved",
			fmt.Sprintf("%q was approved. Complete payment to start the project.", req.Title),
			fmt.Sprintf("/requests/%d/checkout", requestID))
	})
	if err != nil {
		return nil, err
	}

	return s.getRequest(requestID)
}

// RejectRequest releases an assigned request back to the PENDING pool. Only
// the assigned creator may reject, and not once the request has been accepted
// or is awaiting payment. The creator slot is cleared so another creator can
// claim it; this is a re-queue, not a terminal rejection.
func (s *LifecycleService) RejectRequest(callerUserID, requestID uint) (*models.ServiceRequest, error) {
	profile, err := s.creatorProfile(callerUserID)
	if err != nil {
		return nil, err
	}

	req, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.CreatorID == nil || *req.CreatorID != profile.ID {
		return nil, response.NewForbidden("request is not assigned to caller")
	}
	if req.Status == models.RequestAccepted || req.Status == models.RequestAwaitingPayment {
		return nil, response.NewInvalidTransition("cannot reject an accepted request")
	}
	if !CanTransitionRequest(req.Status, models.RequestPending) {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot reject request in status %s", req.Status))
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ? AND creator_id = ?", requestID, req.Status, profile.ID).
			Updates(map[string]interface{}{
				"creator_id":        nil,
				"status":            models.RequestPending,
				"status_updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewInvalidTransition("request status changed concurrently")
		}

		event := models.ProjectEvent{
			RequestID:   &requestID,
			Type:        models.EventCreatorRejected,
			Description: "Creator released the request, back in the queue",
			ActorID:     &callerUserID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return s.notifications.CreateInTx(tx, req.UserID, models.NotifyRequestUpdate,
			"Request back in queue",
			fmt.Sprintf("The creator passed on %q. It is visible to other creators again.", req.Title),
			fmt.Sprintf("/requests/%d", requestID))
	})
	if err != nil {
		return nil, err
	}

	return s.getRequest(requestID)
}

// CancelRequest lets the owning artist cancel a request that has not been
// accepted yet (PENDING or IN_REVIEW only).
func (s *LifecycleService) CancelRequest(callerUserID, requestID uint, reason string) (*models.ServiceRequest, error) {
	req, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != callerUserID {
		return nil, response.NewForbidden("not the request owner")
	}
	if !CanTransitionRequest(req.Status, models.RequestCancelled) {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot cancel request in status %s", req.Status))
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ?", requestID, req.Status).
			Updates(map[string]interface{}{
				"status":              models.RequestCancelled,
				"status_updated_at":   now,
				"cancelled_at":        now,
				"cancellation_reason": reason,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewInvalidTransition("request status changed concurrently")
		}

		event := models.ProjectEvent{
			RequestID:   &requestID,
			Type:        models.EventStatusChanged,
			Description: "Request cancelled by artist",
			ActorID:     &callerUserID,
			Metadata:    fmt.Sprintf(`{"reason":%q}`, reason),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		// Tell the assigned creator, if any
		if req.CreatorID != nil {
			var profile models.CreatorProfile
			if err := tx.First(&profile, *req.CreatorID).Error; err == nil {
				if err := s.notifications.CreateInTx(tx, profile.UserID, models.NotifyRequestUpdate,
					"Request cancelled",
					fmt.Sprintf("The artist cancelled %q.", req.Title),
					fmt.Sprintf("/requests/%d", requestID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getRequest(requestID)
}

// hasProjectAccess reports whether the caller may mutate the project: the
// owning artist, an assigned creator (via a ProjectService row), or an admin.
func (s *LifecycleService) hasProjectAccess(project *models.Project, userID uint, role string) bool {
	if role == models.RoleAdmin || project.UserID == userID {
		return true
	}

	var profile models.CreatorProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return false
	}

	var count int64
	s.db.Model(&models.ProjectService{}).
		Where("project_id = ? AND creator_profile_id = ?", project.ID, profile.ID).
		Count(&count)
	return count > 0
}

// TransitionPhase applies a phase change on a project following the phase
// table. REVIEW -> PRODUCTION increments the revision count by exactly one.
func (s *LifecycleService) TransitionPhase(callerUserID uint, role string, projectID uint, newPhase, message string) (*models.Project, error) {
	var project models.Project
	err := s.db.First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("project not found")
	}
	if err != nil {
		return nil, err
	}

	if !s.hasProjectAccess(&project, callerUserID, role) {
		return nil, response.NewForbidden("no access to this project")
	}

	if _, known := phaseTransitions[newPhase]; !known && newPhase != models.PhasePostProduction {
		return nil, response.NewValidationError("unknown phase: " + newPhase)
	}
	if !CanTransitionPhase(project.CurrentPhase, newPhase) {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot move project from %s to %s", project.CurrentPhase, newPhase))
	}

	isRevision := project.CurrentPhase == models.PhaseReview && newPhase == models.PhaseProduction
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"current_phase": newPhase}
		if isRevision {
			updates["revision_count"] = gorm.Expr("revision_count + 1")
		}
		if newPhase == models.PhaseCompleted {
			updates["completed_at"] = now
		}

		result := tx.Model(&models.Project{}).
			Where("id = ? AND current_phase = ?", projectID, project.CurrentPhase).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewInvalidTransition("project phase changed concurrently")
		}

		description := fmt.Sprintf("Phase changed from %s to %s", project.CurrentPhase, newPhase)
		if isRevision {
			description = "Revision requested, back to production"
		}
		event := models.ProjectEvent{
			ProjectID:   &projectID,
			Type:        models.EventPhaseChanged,
			Description: description,
			ActorID:     &callerUserID,
		}
		if message != "" {
			event.Metadata = fmt.Sprintf(`{"message":%q}`, message)
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		// Notify the artist on phases that matter to them
		switch newPhase {
		case models.PhaseReview:
			return s.notifications.CreateInTx(tx, project.UserID, models.NotifyProjectUpdate,
				"Ready for review",
				fmt.Sprintf("%q is ready for your review.", project.Name),
				fmt.Sprintf("/projects/%d", projectID))
		case models.PhaseCompleted:
			return s.notifications.CreateInTx(tx, project.UserID, models.NotifyProjectUpdate,
				"Project completed",
				fmt.Sprintf("%q is complete.", project.Name),
				fmt.Sprintf("/projects/%d", projectID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Services").First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
