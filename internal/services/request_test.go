package services

import (
	"testing"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
)

func TestCreateRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)

	req, err := svc.Create(artist.ID, &CreateRequestRequest{
		Title:        "Midnight Sessions",
		ArtistName:   "The Night Owls",
		Genre:        "indie",
		ServiceTypes: []string{models.ServiceMixing, models.ServiceMastering, models.ServiceMixing},
		Tier:         "gold",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if req.Status != models.RequestPending {
		t.Errorf("status = %s, want %s", req.Status, models.RequestPending)
	}
	if req.CreatorID != nil {
		t.Errorf("creator_id = %v, want nil while pending", req.CreatorID)
	}
	if req.TierCode != models.TierGold {
		t.Errorf("tier = %s, want %s", req.TierCode, models.TierGold)
	}
	// Duplicate service types collapse
	if types := req.ServiceTypeList(); len(types) != 2 {
		t.Errorf("service types = %v, want 2 entries", types)
	}

	var events int64
	db.Model(&models.ProjectEvent{}).
		Where("request_id = ? AND type = ?", req.ID, models.EventRequestCreated).
		Count(&events)
	if events != 1 {
		t.Errorf("creation event count = %d, want 1", events)
	}
}

func TestCreateRequestUnknownTier(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)

	_, err := svc.Create(artist.ID, &CreateRequestRequest{
		Title:        "Midnight Sessions",
		ServiceTypes: []string{models.ServiceMixing},
		Tier:         "DIAMOND",
	})
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4002 {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListRequestsScoping(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	artistA := createTestUser(t, db, "a@example.com", models.RoleArtist)
	artistB := createTestUser(t, db, "b@example.com", models.RoleArtist)
	creatorUser, profile := createTestCreator(t, db, "mixer@example.com")
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	createTestRequest(t, db, artistA, models.RequestPending, nil)
	createTestRequest(t, db, artistB, models.RequestPending, nil)
	createTestRequest(t, db, artistB, models.RequestInReview, &profile.ID)

	// Artist sees only their own
	resp, err := svc.List(artistA.ID, models.RoleArtist, &RequestListRequest{})
	if err != nil {
		t.Fatalf("artist list: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("artist total = %d, want 1", resp.Total)
	}

	// Creator sees the unclaimed pool plus their assignment
	resp, err = svc.List(creatorUser.ID, models.RoleCreator, &RequestListRequest{})
	if err != nil {
		t.Fatalf("creator list: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("creator total = %d, want 3", resp.Total)
	}

	// Admin sees everything
	resp, err = svc.List(admin.ID, models.RoleAdmin, &RequestListRequest{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("admin total = %d, want 3", resp.Total)
	}

	// Status filter applies on top of scoping
	resp, err = svc.List(admin.ID, models.RoleAdmin, &RequestListRequest{Status: "in_review"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("filtered total = %d, want 1", resp.Total)
	}
}

func TestGetRequestVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	stranger := createTestUser(t, db, "stranger@example.com", models.RoleArtist)
	creatorUser, profile := createTestCreator(t, db, "mixer@example.com")

	pending := createTestRequest(t, db, artist, models.RequestPending, nil)
	assigned := createTestRequest(t, db, artist, models.RequestInReview, &profile.ID)

	// Owner sees it
	if _, err := svc.GetByID(artist.ID, models.RoleArtist, pending.ID); err != nil {
		t.Errorf("owner denied: %v", err)
	}
	// Another artist does not
	if _, err := svc.GetByID(stranger.ID, models.RoleArtist, pending.ID); err == nil {
		t.Error("stranger allowed")
	}
	// Creators see the unclaimed pool
	if _, err := svc.GetByID(creatorUser.ID, models.RoleCreator, pending.ID); err != nil {
		t.Errorf("creator denied pool request: %v", err)
	}
	// Assigned creator sees their claim
	if _, err := svc.GetByID(creatorUser.ID, models.RoleCreator, assigned.ID); err != nil {
		t.Errorf("assigned creator denied: %v", err)
	}
}
