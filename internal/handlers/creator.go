package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/middleware"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type CreatorHandler struct {
	creatorService *services.CreatorService
}

func NewCreatorHandler(db *gorm.DB) *CreatorHandler {
	return &CreatorHandler{
		creatorService: services.NewCreatorService(db),
	}
}

// GetProfile returns the caller's creator profile
// GET /api/creator/profile
func (h *CreatorHandler) GetProfile(c *gin.Context) {
	profile, err := h.creatorService.GetProfile(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateProfile modifies the caller's profile
// PUT /api/creator/profile
func (h *CreatorHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.creatorService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

type linkAccountBody struct {
	AccountID string `json:"account_id" binding:"required"`
}

// LinkAccount stores the caller's connected payout account id
// POST /api/creator/gateway-account
func (h *CreatorHandler) LinkAccount(c *gin.Context) {
	var body linkAccountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.creatorService.LinkGatewayAccount(middleware.GetUserID(c), body.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}
