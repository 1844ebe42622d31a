package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/logger"
	"gorm.io/gorm"
)

// MaintenanceService runs periodic housekeeping: audit-log retention and
// pruning of old read notifications.
type MaintenanceService struct {
	db            *gorm.DB
	configs       *SystemConfigService
	logs          *SystemLogService
	cronScheduler *cron.Cron
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{
		db:      db,
		configs: NewSystemConfigService(db),
		logs:    NewSystemLogService(db),
	}
}

func (s *MaintenanceService) StartScheduler() {
	s.cronScheduler = cron.New()

	// Nightly at 03:00
	if _, err := s.cronScheduler.AddFunc("0 3 * * *", func() {
		s.RunOnce()
	}); err != nil {
		logger.Errorf("[Maintenance] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[Maintenance] Scheduler started")
}

func (s *MaintenanceService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// RunOnce executes every housekeeping job a single time.
func (s *MaintenanceService) RunOnce() {
	removed, err := s.CleanupSystemLogs()
	if err != nil {
		logger.Errorf("[Maintenance] Log cleanup failed: %v", err)
	} else if removed > 0 {
		logger.Infof("[Maintenance] Removed %d expired system logs", removed)
	}

	pruned, err := s.PruneReadNotifications()
	if err != nil {
		logger.Errorf("[Maintenance] Notification pruning failed: %v", err)
	} else if pruned > 0 {
		logger.Infof("[Maintenance] Pruned %d old read notifications", pruned)
	}
}

// CleanupSystemLogs deletes audit rows older than the configured retention
// window (log_retention_days, default 30).
func (s *MaintenanceService) CleanupSystemLogs() (int64, error) {
	days := s.configs.GetInt("log_retention_days", 30)
	return s.logs.Cleanup(days)
}

// PruneReadNotifications deletes read inbox rows older than the configured
// window (notification_retention_days, default 90). Unread rows are kept.
func (s *MaintenanceService) PruneReadNotifications() (int64, error) {
	days := s.configs.GetInt("notification_retention_days", 90)
	cutoff := time.Now().AddDate(0, 0, -days)

	result := s.db.Unscoped().
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
