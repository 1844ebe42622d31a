package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type TierHandler struct {
	tierService *services.TierService
}

func NewTierHandler(db *gorm.DB) *TierHandler {
	return &TierHandler{
		tierService: services.NewTierService(db),
	}
}

// List returns the tier catalog
// GET /api/tiers
func (h *TierHandler) List(c *gin.Context) {
	tiers, err := h.tierService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tiers)
}

// ListAddOns returns purchasable extras
// GET /api/addons
func (h *TierHandler) ListAddOns(c *gin.Context) {
	addOns, err := h.tierService.ListAddOns()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, addOns)
}

// Create adds a tier (admin)
// POST /api/admin/tiers
func (h *TierHandler) Create(c *gin.Context) {
	var req services.CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tier, err := h.tierService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tier)
}

// Update modifies a tier (admin)
// PUT /api/admin/tiers/:id
func (h *TierHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req services.UpdateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tier, err := h.tierService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tier)
}

// SetPrice upserts a tier's per-service price (admin)
// PUT /api/admin/tiers/:id/prices
func (h *TierHandler) SetPrice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req services.SetTierPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	price, err := h.tierService.SetPrice(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, price)
}

// CreateAddOn adds a purchasable extra (admin)
// POST /api/admin/addons
func (h *TierHandler) CreateAddOn(c *gin.Context) {
	var req services.CreateAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	addOn, err := h.tierService.CreateAddOn(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, addOn)
}

// UpdateAddOn modifies an add-on (admin)
// PUT /api/admin/addons/:id
func (h *TierHandler) UpdateAddOn(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req services.UpdateAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	addOn, err := h.tierService.UpdateAddOn(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, addOn)
}
