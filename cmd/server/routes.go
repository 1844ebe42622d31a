package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/handlers"
	"github.com/sounddesk/backend/internal/middleware"
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Public catalog
		tierHandler := handlers.NewTierHandler(models.GetDB())
		api.GET("/tiers", tierHandler.List)
		api.GET("/addons", tierHandler.ListAddOns)

		// Gateway webhook (public with signature verification, rate limited)
		api.POST("/webhooks/gateway", middleware.WebhookRateLimit(), svc.webhookHandler.HandleGatewayEvent)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/password", svc.authHandler.ChangePassword)

			// Service requests and lifecycle
			requestHandler := handlers.NewRequestHandler(models.GetDB())
			protected.POST("/requests", requestHandler.Create)
			protected.GET("/requests", requestHandler.List)
			protected.GET("/requests/:id", requestHandler.Get)
			protected.GET("/requests/:id/events", requestHandler.Timeline)
			protected.POST("/requests/:id/cancel", requestHandler.Cancel)
			protected.POST("/requests/:id/accept",
				middleware.RoleRequired(models.RoleCreator, models.RoleAdmin), requestHandler.Accept)
			protected.POST("/requests/:id/approve",
				middleware.RoleRequired(models.RoleCreator, models.RoleAdmin), requestHandler.Approve)
			protected.POST("/requests/:id/reject",
				middleware.RoleRequired(models.RoleCreator, models.RoleAdmin), requestHandler.Reject)

			// Checkout and payments
			protected.POST("/checkout/sessions", svc.checkoutHandler.CreateSession)
			protected.POST("/requests/:id/pay", svc.checkoutHandler.ConfirmDirect)
			protected.GET("/payments", svc.checkoutHandler.ListPayments)

			// Projects
			projectHandler := handlers.NewProjectHandler(models.GetDB())
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.Get)
			protected.GET("/projects/:id/events", projectHandler.Timeline)
			protected.PATCH("/projects/:id/status", projectHandler.UpdateStatus)

			// Notifications
			notificationHandler := handlers.NewNotificationHandler(models.GetDB())
			protected.GET("/notifications", notificationHandler.List)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

			// Creator profile
			creatorHandler := handlers.NewCreatorHandler(models.GetDB())
			creator := protected.Group("/creator", middleware.RoleRequired(models.RoleCreator, models.RoleAdmin))
			{
				creator.GET("/profile", creatorHandler.GetProfile)
				creator.PUT("/profile", creatorHandler.UpdateProfile)
				creator.POST("/gateway-account", creatorHandler.LinkAccount)
			}
		}

		// Admin only routes (write operations audited)
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Tier catalog
			admin.POST("/tiers", tierHandler.Create)
			admin.PUT("/tiers/:id", tierHandler.Update)
			admin.PUT("/tiers/:id/prices", tierHandler.SetPrice)
			admin.POST("/addons", tierHandler.CreateAddOn)
			admin.PUT("/addons/:id", tierHandler.UpdateAddOn)

			// Settings and audit log
			systemHandler := handlers.NewSystemHandler(models.GetDB())
			admin.GET("/configs", systemHandler.ListConfigs)
			admin.PUT("/configs", systemHandler.SetConfig)
			admin.GET("/logs", systemHandler.ListLogs)
		}
	}
}
