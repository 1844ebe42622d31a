package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/middleware"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService   *services.ProjectService
	lifecycleService *services.LifecycleService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService:   services.NewProjectService(db),
		lifecycleService: services.NewLifecycleService(db),
	}
}

// List returns projects visible to the caller
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.projectService.List(middleware.GetUserID(c), middleware.GetRole(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Get returns one project
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}

// Timeline returns the project's event log
// GET /api/projects/:id/events
func (h *ProjectHandler) Timeline(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	events, err := h.projectService.Timeline(middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

type updateStatusBody struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message" binding:"max=500"`
}

// UpdateStatus applies a phase transition
// PATCH /api/projects/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.lifecycleService.TransitionPhase(
		middleware.GetUserID(c), middleware.GetRole(c), id, body.Status, body.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, project)
}
