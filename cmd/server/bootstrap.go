package main

import (
	"github.com/sounddesk/backend/internal/config"
	"github.com/sounddesk/backend/internal/handlers"
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/internal/services"
	"github.com/sounddesk/backend/internal/utils"
	"github.com/sounddesk/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg                *config.Config
	gateway            services.CheckoutGateway
	maintenanceService *services.MaintenanceService
	taskQueue          services.TaskQueue
	worker             *services.Worker
	authHandler        *handlers.AuthHandler
	webhookHandler     *handlers.WebhookHandler
	checkoutHandler    *handlers.CheckoutHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default tiers and settings
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start housekeeping scheduler (log retention, notification pruning)
	maintenanceService := services.NewMaintenanceService(models.GetDB())
	maintenanceService.StartScheduler()

	// Payment gateway client
	gateway := services.NewHTTPGateway(&cfg.Gateway)

	// Notification delivery queue (Redis-backed if enabled, otherwise sync)
	emailService := services.NewEmailService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.DeliverNotification)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.DeliverNotification)
			worker.Start()
		}
	}

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:                cfg,
		gateway:            gateway,
		maintenanceService: maintenanceService,
		taskQueue:          taskQueue,
		worker:             worker,
		authHandler:        authHandler,
		webhookHandler:     handlers.NewWebhookHandler(models.GetDB(), gateway, cfg),
		checkoutHandler:    handlers.NewCheckoutHandler(models.GetDB(), gateway, cfg),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.maintenanceService.StopScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
