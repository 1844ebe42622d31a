package services

import (
	"fmt"
	"testing"

	"github.com/sounddesk/backend/internal/config"
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		amount int64
		pct    int
		fee    int64
	}{
		{22500, 10, 2250},
		{10000, 10, 1000},
		{9999, 10, 1000},  // 999.9 rounds up
		{9994, 10, 999},   // 999.4 rounds down
		{999, 33, 330},    // 329.67 rounds up
		{1, 10, 0},        // 0.1 rounds down
		{5, 10, 1},        // 0.5 rounds up
		{10000, 0, 0},
		{10000, 100, 10000},
		{0, 10, 0},
	}

	for _, tt := range tests {
		if got := PlatformFee(tt.amount, tt.pct); got != tt.fee {
			t.Errorf("PlatformFee(%d, %d) = %d, want %d", tt.amount, tt.pct, got, tt.fee)
		}
	}
}

func TestFeeAndPayoutSumToTotal(t *testing.T) {
	amounts := []int64{1, 99, 101, 7500, 9999, 22500, 35000, 1234567}
	for _, amount := range amounts {
		for pct := 0; pct <= 100; pct++ {
			fee := PlatformFee(amount, pct)
			payout := CreatorPayout(amount, pct)
			if fee+payout != amount {
				t.Fatalf("fee %d + payout %d != total %d (pct=%d)", fee, payout, amount, pct)
			}
			if fee < 0 || payout < 0 {
				t.Fatalf("negative split: fee=%d payout=%d (amount=%d pct=%d)", fee, payout, amount, pct)
			}
		}
	}
}

func newCheckoutService(db *gorm.DB) *CheckoutService {
	return NewCheckoutService(db, nil, config.DefaultConfig())
}

func paidEvent(req *models.ServiceRequest, profile *models.CreatorProfile, sessionID string, total int64) *CheckoutCompletedData {
	data := &CheckoutCompletedData{
		SessionID:     sessionID,
		AmountTotal:   total,
		Currency:      "usd",
		PaymentIntent: "pi_test_123",
		Metadata: map[string]string{
			MetaRequestID: fmt.Sprintf("%d", req.ID),
		},
	}
	if profile != nil {
		data.Metadata[MetaCreatorID] = fmt.Sprintf("%d", profile.ID)
	}
	return data
}

func TestHandleCheckoutCompleted(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	_, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestAwaitingPayment, &profile.ID)

	if err := svc.HandleCheckoutCompleted(paidEvent(req, profile, "cs_test_1", 22500)); err != nil {
		t.Fatalf("HandleCheckoutCompleted: %v", err)
	}

	// Payment recorded with a 10% split
	var payment models.Payment
	if err := db.Where("session_id = ?", "cs_test_1").First(&payment).Error; err != nil {
		t.Fatalf("payment not recorded: %v", err)
	}
	if payment.TotalAmount != 22500 || payment.PlatformFee != 2250 || payment.CreatorAmount != 20250 {
		t.Errorf("split = %d/%d/%d, want 22500/2250/20250",
			payment.TotalAmount, payment.PlatformFee, payment.CreatorAmount)
	}

	// Request moved to PAID
	var gotReq models.ServiceRequest
	db.First(&gotReq, req.ID)
	if gotReq.Status != models.RequestPaid {
		t.Errorf("request status = %s, want %s", gotReq.Status, models.RequestPaid)
	}

	// Exactly one project with one service row per requested type
	var project models.Project
	if err := db.Preload("Services").Where("request_id = ?", req.ID).First(&project).Error; err != nil {
		t.Fatalf("project not created: %v", err)
	}
	if project.CurrentPhase != models.PhasePreProduction {
		t.Errorf("project phase = %s, want %s", project.CurrentPhase, models.PhasePreProduction)
	}
	if len(project.Services) != 2 {
		t.Errorf("project service rows = %d, want 2", len(project.Services))
	}
	for _, ps := range project.Services {
		if ps.CreatorProfileID != profile.ID {
			t.Errorf("service row creator = %d, want %d", ps.CreatorProfileID, profile.ID)
		}
	}

	// Timeline event recorded
	var events int64
	db.Model(&models.ProjectEvent{}).
		Where("request_id = ? AND type = ?", req.ID, models.EventPaymentCompleted).
		Count(&events)
	if events != 1 {
		t.Errorf("payment event count = %d, want 1", events)
	}
}

func TestHandleCheckoutCompletedRedelivery(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	_, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestAwaitingPayment, &profile.ID)

	event := paidEvent(req, profile, "cs_test_dup", 22500)
	if err := svc.HandleCheckoutCompleted(event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	// Same session id again: must be an acknowledged no-op
	if err := svc.HandleCheckoutCompleted(event); err != nil {
		t.Fatalf("redelivery should be a no-op, got %v", err)
	}

	var payments, projects int64
	db.Model(&models.Payment{}).Where("request_id = ?", req.ID).Count(&payments)
	db.Model(&models.Project{}).Where("request_id = ?", req.ID).Count(&projects)
	if payments != 1 {
		t.Errorf("payment count = %d, want 1", payments)
	}
	if projects != 1 {
		t.Errorf("project count = %d, want 1", projects)
	}
}

func TestHandleCheckoutCompletedWrongStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	req := createTestRequest(t, db, artist, models.RequestPending, nil)

	err := svc.HandleCheckoutCompleted(paidEvent(req, nil, "cs_test_bad", 22500))
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4001 {
		t.Fatalf("expected invalid transition error, got %v", err)
	}

	var payments int64
	db.Model(&models.Payment{}).Count(&payments)
	if payments != 0 {
		t.Errorf("payment count = %d, want 0", payments)
	}
}

func TestHandleCheckoutCompletedMissingMetadata(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	err := svc.HandleCheckoutCompleted(&CheckoutCompletedData{
		SessionID:   "cs_no_meta",
		AmountTotal: 1000,
	})
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.Code != 4002 {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleAccountUpdated(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	_, profile := createTestCreator(t, db, "mixer@example.com")
	db.Model(profile).Update("gateway_account_id", "acct_test_1")

	err := svc.HandleAccountUpdated(&AccountUpdatedData{
		AccountID:        "acct_test_1",
		DetailsSubmitted: true,
		PayoutsEnabled:   true,
	})
	if err != nil {
		t.Fatalf("HandleAccountUpdated: %v", err)
	}

	var got models.CreatorProfile
	db.First(&got, profile.ID)
	if !got.OnboardingDone || !got.PayoutsEnabled {
		t.Errorf("flags = onboarding:%v payouts:%v, want both true", got.OnboardingDone, got.PayoutsEnabled)
	}

	// Unknown accounts are acknowledged without error
	if err := svc.HandleAccountUpdated(&AccountUpdatedData{AccountID: "acct_unknown"}); err != nil {
		t.Errorf("unknown account should be a no-op, got %v", err)
	}
}

func TestConfirmDirect(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	_, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestAccepted, &profile.ID)

	got, err := svc.ConfirmDirect(artist.ID, req.ID)
	if err != nil {
		t.Fatalf("ConfirmDirect: %v", err)
	}
	if got.Status != models.RequestPaid {
		t.Errorf("status = %s, want %s", got.Status, models.RequestPaid)
	}

	// Price recomputed from the GOLD tier: two services at the flat base price
	var payment models.Payment
	if err := db.Where("request_id = ?", req.ID).First(&payment).Error; err != nil {
		t.Fatalf("payment not recorded: %v", err)
	}
	if payment.TotalAmount != 40000 {
		t.Errorf("total = %d, want 40000", payment.TotalAmount)
	}
	if payment.PlatformFee+payment.CreatorAmount != payment.TotalAmount {
		t.Errorf("split does not sum: %d + %d != %d",
			payment.PlatformFee, payment.CreatorAmount, payment.TotalAmount)
	}
}

func TestConfirmDirectNotOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	artist := createTestUser(t, db, "artist@example.com", models.RoleArtist)
	stranger := createTestUser(t, db, "stranger@example.com", models.RoleArtist)
	_, profile := createTestCreator(t, db, "mixer@example.com")
	req := createTestRequest(t, db, artist, models.RequestAccepted, &profile.ID)

	_, err := svc.ConfirmDirect(stranger.ID, req.ID)
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 403 {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestFeePercentResolution(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(db)

	// Default when nothing is configured
	if pct := svc.feePercentFor(models.TierGold); pct != DefaultFeePercent {
		t.Errorf("pct = %d, want default %d", pct, DefaultFeePercent)
	}

	// Platform config overrides the default
	if err := NewSystemConfigService(db).Set("platform_fee_percent", "15"); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if pct := svc.feePercentFor(models.TierGold); pct != 15 {
		t.Errorf("pct = %d, want 15 from config", pct)
	}

	// Tier commission wins over everything
	commission := 20
	db.Model(&models.Tier{}).Where("code = ?", models.TierGold).Update("commission_percent", commission)
	if pct := svc.feePercentFor(models.TierGold); pct != 20 {
		t.Errorf("pct = %d, want 20 from tier", pct)
	}
}
