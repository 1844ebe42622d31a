package services

import (
	"testing"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
)

func TestRequestTransitionTable(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.RequestPending, models.RequestInReview, true},
		{models.RequestPending, models.RequestCancelled, true},
		{models.RequestPending, models.RequestPaid, false},
		{models.RequestPending, models.RequestAccepted, false},
		{models.RequestInReview, models.RequestAccepted, true},
		{models.RequestInReview, models.RequestAwaitingPayment, true},
		{models.RequestInReview, models.RequestPending, true},
		{models.RequestInReview, models.RequestCancelled, true},
		{models.RequestInReview, models.RequestPaid, false},
		{models.RequestAccepted, models.RequestPaid, true},
		{models.RequestAccepted, models.RequestCancelled, false},
		{models.RequestAccepted, models.RequestPending, false},
		{models.RequestAwaitingPayment, models.RequestPaid, true},
		{models.RequestAwaitingPayment, models.RequestCancelled, false},
		{models.RequestPaid, models.RequestCancelled, false},
		{models.RequestPaid, models.RequestPending, false},
		{models.RequestCancelled, models.RequestPending, false},
		{models.RequestCancelled, models.RequestPaid, false},
	}

	for _, tt := range tests {
		if got := CanTransitionRequest(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransitionRequest(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestPhaseTransitionTable(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.PhasePreProduction, models.PhaseProduction, true},
		{models.PhasePreProduction, models.PhaseReview, false},
		{models.PhaseProduction, models.PhaseReview, true},
		{models.PhaseProduction, models.PhaseCompleted, false},
		{models.PhaseReview, models.PhaseProduction, true},
		{models.PhaseReview, models.PhaseCompleted, true},
		{models.PhaseReview, models.PhasePreProduction, false},
		{models.PhaseCompleted, models.PhaseProduction, false},
		{models.PhaseCompleted, models.PhaseReview, false},
		{models.PhaseCompleted, models.PhasePreProduction, false},
	}

	for _, tt := range tests {
		if got := CanTransitionPhase(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransitionPhase(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestAcceptRequestClaimsPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	creatorUser, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestPending, nil)

	got, err := svc.AcceptRequest(creatorUser.ID, req.ID)
	if err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if got.Status != models.RequestInReview {
		t.Errorf("status = %s, want %s", got.Status, models.RequestInReview)
	}
	if got.CreatorID == nil || *got.CreatorID != profile.ID {
		t.Errorf("creator_id = %v, want %d", got.CreatorID, profile.ID)
	}

	var events int64
	db.Model(&models.ProjectEvent{}).Where("request_id = ?", req.ID).Count(&events)
	if events != 1 {
		t.Errorf("event count = %d, want 1", events)
	}

	var notifs int64
	db.Model(&models.Notification{}).Where("user_id = ?", artist.ID).Count(&notifs)
	if notifs != 1 {
		t.Errorf("artist notification count = %d, want 1", notifs)
	}
}

func TestAcceptRequestAlreadyClaimed(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	_, firstProfile := createTestCreator(t, db, "first@example.com")
	secondUser, _ := createTestCreator(t, db, "second@example.com")
	req := createTestRequest(t, db, artist, models.RequestInReview, &firstProfile.ID)

	_, err := svc.AcceptRequest(secondUser.ID, req.ID)
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4001 {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestApproveRequestMovesToAwaitingPayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	creatorUser, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestInReview, &profile.ID)

	got, err := svc.ApproveRequest(creatorUser.ID, req.ID)
	if err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	if got.Status != models.RequestAwaitingPayment {
		t.Errorf("status = %s, want %s", got.Status, models.RequestAwaitingPayment)
	}
}

func TestApproveRequestWrongCreator(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	_, assigned := createTestCreator(t, db, "assigned@example.com")
	otherUser, _ := createTestCreator(t, db, "other@example.com")
	req := createTestRequest(t, db, artist, models.RequestInReview, &assigned.ID)

	_, err := svc.ApproveRequest(otherUser.ID, req.ID)
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 403 {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRejectRequestReleasesToPool(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	creatorUser, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestInReview, &profile.ID)

	got, err := svc.RejectRequest(creatorUser.ID, req.ID)
	if err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if got.Status != models.RequestPending {
		t.Errorf("status = %s, want %s", got.Status, models.RequestPending)
	}
	if got.CreatorID != nil {
		t.Errorf("creator_id = %v, want nil after release", got.CreatorID)
	}

	var events int64
	db.Model(&models.ProjectEvent{}).
		Where("request_id = ? AND type = ?", req.ID, models.EventCreatorRejected).
		Count(&events)
	if events != 1 {
		t.Errorf("rejection events = %d, want 1", events)
	}

	var notified int64
	db.Model(&models.Notification{}).Where("user_id = ?", artist.ID).Count(&notified)
	if notified != 1 {
		t.Errorf("artist notifications = %d, want 1", notified)
	}
}

func TestRejectRequestAfterApprovalFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	creatorUser, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestAwaitingPayment, &profile.ID)

	_, err := svc.RejectRequest(creatorUser.ID, req.ID)
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4001 {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestCancelRequestOnlyBeforeAcceptance(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	_, profile := createTestCreator(t, db, "mixer@example.com")

	// Cancellable while pending
	pending := createTestRequest(t, db, artist, models.RequestPending, nil)
	got, err := svc.CancelRequest(artist.ID, pending.ID, "changed my mind")
	if err != nil {
		t.Fatalf("CancelRequest pending: %v", err)
	}
	if got.Status != models.RequestCancelled {
		t.Errorf("status = %s, want %s", got.Status, models.RequestCancelled)
	}
	if got.CancelledAt == nil {
		t.Error("cancelled_at not set")
	}
	if got.CancellationReason != "changed my mind" {
		t.Errorf("cancellation_reason = %q", got.CancellationReason)
	}

	// Not cancellable once accepted
	accepted := createTestRequest(t, db, artist, models.RequestAccepted, &profile.ID)
	_, err = svc.CancelRequest(artist.ID, accepted.ID, "")
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4001 {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestCancelRequestNotOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	stranger := createTestUser(t, db, "stranger@example.com", models.RoleArtist)
	req := createTestRequest(t, db, artist, models.RequestPending, nil)

	_, err := svc.CancelRequest(stranger.ID, req.ID, "")
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 403 {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTransitionPhaseRevisionLoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	project := models.Project{
		RequestID:    1,
		UserID:       artist.ID,
		Name:         "Midnight Sessions",
		TierCode:     models.TierGold,
		CurrentPhase: models.PhasePreProduction,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}

	steps := []string{
		models.PhaseProduction,
		models.PhaseReview,
		models.PhaseProduction, // first revision
		models.PhaseReview,
		models.PhaseProduction, // second revision
		models.PhaseReview,
		models.PhaseCompleted,
	}
	for _, phase := range steps {
		if _, err := svc.TransitionPhase(artist.ID, models.RoleArtist, project.ID, phase, ""); err != nil {
			t.Fatalf("TransitionPhase to %s: %v", phase, err)
		}
	}

	var got models.Project
	if err := db.First(&got, project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if got.RevisionCount != 2 {
		t.Errorf("revision_count = %d, want 2", got.RevisionCount)
	}
	if got.CurrentPhase != models.PhaseCompleted {
		t.Errorf("current_phase = %s, want %s", got.CurrentPhase, models.PhaseCompleted)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	// COMPLETED is terminal
	_, err := svc.TransitionPhase(artist.ID, models.RoleArtist, project.ID, models.PhaseProduction, "")
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4001 {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestTransitionPhaseRequiresAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	outsiderUser, _ := createTestCreator(t, db, "outsider@example.com")
	project := models.Project{
		RequestID:    1,
		UserID:       artist.ID,
		Name:         "Midnight Sessions",
		CurrentPhase: models.PhasePreProduction,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}

	_, err := svc.TransitionPhase(outsiderUser.ID, models.RoleCreator, project.ID, models.PhaseProduction, "")
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 403 {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
