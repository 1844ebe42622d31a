package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

// SystemHandler exposes admin-only settings and the audit log.
type SystemHandler struct {
	configService *services.SystemConfigService
	logService    *services.SystemLogService
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{
		configService: services.NewSystemConfigService(db),
		logService:    services.NewSystemLogService(db),
	}
}

// ListConfigs returns settings rows
// GET /api/admin/configs
func (h *SystemHandler) ListConfigs(c *gin.Context) {
	configs, err := h.configService.List(c.Query("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, configs)
}

type setConfigBody struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// SetConfig upserts one settings row
// PUT /api/admin/configs
func (h *SystemHandler) SetConfig(c *gin.Context) {
	var body setConfigBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.Set(body.Key, body.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"key": body.Key, "value": body.Value})
}

// ListLogs returns the audit log
// GET /api/admin/logs
func (h *SystemHandler) ListLogs(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}
