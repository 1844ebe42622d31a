package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/config"
	"github.com/sounddesk/backend/internal/middleware"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(db *gorm.DB, gateway services.CheckoutGateway, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: services.NewCheckoutService(db, gateway, cfg),
	}
}

// CreateSession opens a hosted checkout session for a request
// POST /api/checkout/sessions
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.checkoutService.CreateSession(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// ConfirmDirect applies the PAID transition without a gateway round trip
// POST /api/requests/:id/pay
func (h *CheckoutHandler) ConfirmDirect(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	request, err := h.checkoutService.ConfirmDirect(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

// ListPayments returns payments visible to the caller
// GET /api/payments
func (h *CheckoutHandler) ListPayments(c *gin.Context) {
	var req services.PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.checkoutService.ListPayments(middleware.GetUserID(c), middleware.GetRole(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
