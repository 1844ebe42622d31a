package services

import (
	"errors"
	"strings"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type TierService struct {
	db *gorm.DB
}

func NewTierService(db *gorm.DB) *TierService {
	return &TierService{db: db}
}

type CreateTierRequest struct {
	Code              string `json:"code" binding:"required"`
	Name              string `json:"name" binding:"required"`
	BasePrice         int64  `json:"base_price" binding:"required,min=0"`
	Revisions         int    `json:"revisions"`
	DeliveryDays      int    `json:"delivery_days"`
	CommissionPercent *int   `json:"commission_percent" binding:"omitempty,min=0,max=100"`
}

type UpdateTierRequest struct {
	Name              string `json:"name"`
	BasePrice         *int64 `json:"base_price" binding:"omitempty,min=0"`
	Revisions         *int   `json:"revisions"`
	DeliveryDays      *int   `json:"delivery_days"`
	CommissionPercent *int   `json:"commission_percent" binding:"omitempty,min=0,max=100"`
	IsActive          *bool  `json:"is_active"`
}

type SetTierPriceRequest struct {
	ServiceType string `json:"service_type" binding:"required,oneof=MIXING MASTERING RECORDING"`
	Price       int64  `json:"price" binding:"required,min=0"`
}

// List returns all tiers with their per-service prices.
func (s *TierService) List() ([]models.Tier, error) {
	var tiers []models.Tier
	if err := s.db.Preload("Prices").Order("base_price ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// GetByCode looks up an active tier by code (case-insensitive).
func (s *TierService) GetByCode(code string) (*models.Tier, error) {
	var tier models.Tier
	err := s.db.Preload("Prices").
		Where("code = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("unknown tier: " + code)
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// Create adds a tier. Duplicate codes conflict.
func (s *TierService) Create(req *CreateTierRequest) (*models.Tier, error) {
	code := strings.ToUpper(req.Code)

	var count int64
	s.db.Model(&models.Tier{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("tier code already exists: " + code)
	}

	tier := models.Tier{
		Code:              code,
		Name:              req.Name,
		BasePrice:         req.BasePrice,
		Revisions:         req.Revisions,
		DeliveryDays:      req.DeliveryDays,
		CommissionPercent: req.CommissionPercent,
		IsActive:          true,
	}
	if err := s.db.Create(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

// Update modifies tier fields.
func (s *TierService) Update(id uint, req *UpdateTierRequest) (*models.Tier, error) {
	var tier models.Tier
	if err := s.db.First(&tier, id).Error; err != nil {
		return nil, response.NewNotFound("tier not found")
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.Revisions != nil {
		updates["revisions"] = *req.Revisions
	}
	if req.DeliveryDays != nil {
		updates["delivery_days"] = *req.DeliveryDays
	}
	if req.CommissionPercent != nil {
		updates["commission_percent"] = *req.CommissionPercent
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&tier).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

// SetPrice upserts the per-service price override for a tier.
func (s *TierService) SetPrice(tierID uint, req *SetTierPriceRequest) (*models.TierPrice, error) {
	var tier models.Tier
	if err := s.db.First(&tier, tierID).Error; err != nil {
		return nil, response.NewNotFound("tier not found")
	}

	var price models.TierPrice
	err := s.db.Where("tier_id = ? AND service_type = ?", tierID, req.ServiceType).First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		price = models.TierPrice{TierID: tierID, ServiceType: req.ServiceType, Price: req.Price}
		if err := s.db.Create(&price).Error; err != nil {
			return nil, err
		}
		return &price, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&price).Update("price", req.Price).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

// ResolveBasePrice returns the price in cents for (tier, service type): the
// per-service override when present, otherwise the tier's flat base price.
func (s *TierService) ResolveBasePrice(tier *models.Tier, serviceType string) int64 {
	for _, p := range tier.Prices {
		if p.ServiceType == serviceType {
			return p.Price
		}
	}
	return tier.BasePrice
}

// --- Add-ons ---

type CreateAddOnRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"min=0"`
	UnitPrice   int64  `json:"unit_price" binding:"min=0"`
	PerUnit     bool   `json:"per_unit"`
}

type UpdateAddOnRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       *int64 `json:"price" binding:"omitempty,min=0"`
	UnitPrice   *int64 `json:"unit_price" binding:"omitempty,min=0"`
	PerUnit     *bool  `json:"per_unit"`
	IsActive    *bool  `json:"is_active"`
}

// ListAddOns returns all active add-ons.
func (s *TierService) ListAddOns() ([]models.AddOn, error) {
	var addOns []models.AddOn
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&addOns).Error; err != nil {
		return nil, err
	}
	return addOns, nil
}

// GetAddOn looks up an active add-on by id. Prices always come from this
// lookup; client-submitted prices are never trusted.
func (s *TierService) GetAddOn(id uint) (*models.AddOn, error) {
	var addOn models.AddOn
	err := s.db.Where("id = ? AND is_active = ?", id, true).First(&addOn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("add-on not found")
	}
	if err != nil {
		return nil, err
	}
	return &addOn, nil
}

// CreateAddOn adds a purchasable extra.
func (s *TierService) CreateAddOn(req *CreateAddOnRequest) (*models.AddOn, error) {
	addOn := models.AddOn{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		UnitPrice:   req.UnitPrice,
		PerUnit:     req.PerUnit,
		IsActive:    true,
	}
	if err := s.db.Create(&addOn).Error; err != nil {
		return nil, err
	}
	return &addOn, nil
}

// UpdateAddOn modifies add-on fields.
func (s *TierService) UpdateAddOn(id uint, req *UpdateAddOnRequest) (*models.AddOn, error) {
	var addOn models.AddOn
	if err := s.db.First(&addOn, id).Error; err != nil {
		return nil, response.NewNotFound("add-on not found")
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.PerUnit != nil {
		updates["per_unit"] = *req.PerUnit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&addOn).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &addOn, nil
}
