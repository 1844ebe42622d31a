package services

import (
	"testing"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
)

func TestGetTierByCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewTierService(db)

	// Case-insensitive lookup
	tier, err := svc.GetByCode("gold")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if tier.Code != models.TierGold || tier.BasePrice != 20000 {
		t.Errorf("tier = %s/%d", tier.Code, tier.BasePrice)
	}

	// Unknown code
	_, err = svc.GetByCode("DIAMOND")
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 404 {
		t.Fatalf("expected not found, got %v", err)
	}

	// Inactive tiers are hidden
	db.Model(&models.Tier{}).Where("code = ?", models.TierGold).Update("is_active", false)
	if _, err := svc.GetByCode("GOLD"); err == nil {
		t.Error("inactive tier returned")
	}
}

func TestResolveBasePrice(t *testing.T) {
	db := newTestDB(t)
	svc := NewTierService(db)

	tier, err := svc.GetByCode(models.TierGold)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}

	// Flat base price without overrides
	if price := svc.ResolveBasePrice(tier, models.ServiceMixing); price != 20000 {
		t.Errorf("price = %d, want flat 20000", price)
	}

	// Per-service override wins
	if _, err := svc.SetPrice(tier.ID, &SetTierPriceRequest{
		ServiceType: models.ServiceMixing,
		Price:       25000,
	}); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}

	tier, _ = svc.GetByCode(models.TierGold)
	if price := svc.ResolveBasePrice(tier, models.ServiceMixing); price != 25000 {
		t.Errorf("price = %d, want override 25000", price)
	}
	if price := svc.ResolveBasePrice(tier, models.ServiceMastering); price != 20000 {
		t.Errorf("price = %d, want flat 20000 for non-overridden type", price)
	}

	// Upsert replaces the existing override
	if _, err := svc.SetPrice(tier.ID, &SetTierPriceRequest{
		ServiceType: models.ServiceMixing,
		Price:       26000,
	}); err != nil {
		t.Fatalf("SetPrice upsert: %v", err)
	}
	tier, _ = svc.GetByCode(models.TierGold)
	if price := svc.ResolveBasePrice(tier, models.ServiceMixing); price != 26000 {
		t.Errorf("price = %d, want upserted 26000", price)
	}
	if len(tier.Prices) != 1 {
		t.Errorf("price rows = %d, want 1 after upsert", len(tier.Prices))
	}
}

func TestCreateTierDuplicateCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewTierService(db)

	_, err := svc.Create(&CreateTierRequest{Code: "gold", Name: "Gold Again", BasePrice: 1})
	appErr, ok := response.IsAppError(err)
	if !ok || appErr.HTTPStatus != 409 {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetAddOnActiveOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewTierService(db)

	addOn, err := svc.CreateAddOn(&CreateAddOnRequest{
		Name:      "Stem delivery",
		Price:     3000,
	})
	if err != nil {
		t.Fatalf("CreateAddOn: %v", err)
	}

	if _, err := svc.GetAddOn(addOn.ID); err != nil {
		t.Errorf("active add-on denied: %v", err)
	}

	inactive := false
	if _, err := svc.UpdateAddOn(addOn.ID, &UpdateAddOnRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateAddOn: %v", err)
	}
	if _, err := svc.GetAddOn(addOn.ID); err == nil {
		t.Error("inactive add-on returned")
	}
}
