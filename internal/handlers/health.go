package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Requests waiting on payment
	var awaitingCount int64
	models.GetDB().Model(&models.ServiceRequest{}).
		Where("status = ?", models.RequestAwaitingPayment).
		Count(&awaitingCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "sounddesk",
		"components": gin.H{
			"database":         dbStatus,
			"queue_mode":       queueMode,
			"awaiting_payment": awaitingCount,
		},
	})
}
