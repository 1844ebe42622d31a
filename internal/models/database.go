package models

import (
	"fmt"

	"github.com/sounddesk/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&CreatorProfile{},
		&Tier{},
		&TierPrice{},
		&AddOn{},
		&ServiceRequest{},
		&Project{},
		&ProjectService{},
		&Payment{},
		&ProjectEvent{},
		&Notification{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default tiers and system configs if not exists
func SeedDefaultData() error {
	var tierCount int64
	DB.Model(&Tier{}).Count(&tierCount)
	if tierCount == 0 {
		defaultTiers := []Tier{
			{Code: TierBronze, Name: "Bronze", BasePrice: 7500, Revisions: 1, DeliveryDays: 10, IsActive: true},
			{Code: TierSilver, Name: "Silver", BasePrice: 12500, Revisions: 2, DeliveryDays: 7, IsActive: true},
			{Code: TierGold, Name: "Gold", BasePrice: 20000, Revisions: 3, DeliveryDays: 5, IsActive: true},
			{Code: TierPlatinum, Name: "Platinum", BasePrice: 35000, Revisions: 5, DeliveryDays: 3, IsActive: true},
		}
		for _, tier := range defaultTiers {
			if err := DB.Create(&tier).Error; err != nil {
				return err
			}
		}
	}

	defaultConfigs := []SystemConfig{
		{Key: "platform_fee_percent", Value: "10", Type: "int", Group: "platform", Label: "Platform Fee Percent"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
