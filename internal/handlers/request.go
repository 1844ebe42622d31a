package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/middleware"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type RequestHandler struct {
	requestService   *services.RequestService
	lifecycleService *services.LifecycleService
}

func NewRequestHandler(db *gorm.DB) *RequestHandler {
	return &RequestHandler{
		requestService:   services.NewRequestService(db),
		lifecycleService: services.NewLifecycleService(db),
	}
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// Create opens a new service request
// POST /api/requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req services.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List returns requests visible to the caller
// GET /api/requests
func (h *RequestHandler) List(c *gin.Context) {
	var req services.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.requestService.List(middleware.GetUserID(c), middleware.GetRole(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Get returns one request
// GET /api/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	request, err := h.requestService.GetByID(middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

// Timeline returns the request's event log
// GET /api/requests/:id/events
func (h *RequestHandler) Timeline(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	events, err := h.requestService.Timeline(middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

// Accept lets a creator claim a pending request
// POST /api/requests/:id/accept
func (h *RequestHandler) Accept(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	request, err := h.lifecycleService.AcceptRequest(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

// Approve moves an in-review request to awaiting payment
// POST /api/requests/:id/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	request, err := h.lifecycleService.ApproveRequest(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

// Reject releases a claimed request back to the pool
// POST /api/requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	request, err := h.lifecycleService.RejectRequest(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}

type cancelRequestBody struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Cancel lets the owning artist cancel an unaccepted request
// POST /api/requests/:id/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var body cancelRequestBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := h.lifecycleService.CancelRequest(middleware.GetUserID(c), id, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, request)
}
