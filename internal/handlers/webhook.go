package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/config"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/pkg/logger"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

// SignatureHeader carries the gateway's HMAC over the raw request body.
const SignatureHeader = "X-Gateway-Signature"

type WebhookHandler struct {
	checkoutService *services.CheckoutService
	webhookSecret   string
}

func NewWebhookHandler(db *gorm.DB, gateway services.CheckoutGateway, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		checkoutService: services.NewCheckoutService(db, gateway, cfg),
		webhookSecret:   cfg.Gateway.WebhookSecret,
	}
}

// HandleGatewayEvent receives asynchronous payment gateway callbacks.
// POST /api/webhooks/gateway
//
// Response contract: 400 when the signature fails (never retried), 200 once
// the event is handled or recognized as a duplicate, 500 on transient
// failure so the gateway redelivers.
func (h *WebhookHandler) HandleGatewayEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}

	clientIP := c.ClientIP()
	userAgent := c.Request.UserAgent()

	signature := c.GetHeader(SignatureHeader)
	if !services.VerifyGatewaySignature(h.webhookSecret, body, signature) {
		services.LogWarning("Webhook", "InvalidSignature", "Gateway webhook signature verification failed",
			nil, clientIP, userAgent, nil)
		response.Error(c, response.NewSignatureError("invalid webhook signature"))
		return
	}

	event, err := services.ParseGatewayEvent(body)
	if err != nil {
		response.Error(c, response.NewValidationError(err.Error()))
		return
	}

	switch event.Type {
	case services.EventCheckoutCompleted:
		var data services.CheckoutCompletedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			response.Error(c, response.NewValidationError("malformed checkout session object"))
			return
		}
		h.finish(c, event, h.checkoutService.HandleCheckoutCompleted(&data), clientIP, userAgent)

	case services.EventAccountUpdated:
		var data services.AccountUpdatedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			response.Error(c, response.NewValidationError("malformed account object"))
			return
		}
		h.finish(c, event, h.checkoutService.HandleAccountUpdated(&data), clientIP, userAgent)

	default:
		// Unknown event types are acknowledged so the gateway stops resending.
		logger.Info().Str("event_type", event.Type).Msg("ignoring unhandled gateway event")
		c.JSON(http.StatusOK, gin.H{"received": true, "handled": false})
	}
}

// finish maps a handler result onto the webhook response contract. AppErrors
// are permanent: redelivering the same event cannot fix them, so they are
// acknowledged with 200 and recorded in the audit log. Anything else is
// treated as transient.
func (h *WebhookHandler) finish(c *gin.Context, event *services.GatewayEvent, err error, clientIP, userAgent string) {
	if err == nil {
		services.LogInfo("Webhook", "Processed", "Gateway event processed",
			nil, clientIP, userAgent, map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
			})
		c.JSON(http.StatusOK, gin.H{"received": true, "handled": true})
		return
	}

	if appErr, ok := response.IsAppError(err); ok {
		services.LogWarning("Webhook", "Rejected", "Gateway event rejected: "+appErr.Message,
			nil, clientIP, userAgent, map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
			})
		c.JSON(http.StatusOK, gin.H{"received": true, "handled": false, "reason": appErr.Message})
		return
	}

	services.LogError("Webhook", "Failed", "Gateway event processing failed: "+err.Error(),
		nil, clientIP, userAgent, map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
	response.ServerError(c, "event processing failed")
}
