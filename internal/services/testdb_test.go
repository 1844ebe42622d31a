package services

import (
	"path/filepath"
	"testing"

	"github.com/sounddesk/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema and seed
// tiers, mirroring what bootstrap does at startup.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.CreatorProfile{},
		&models.Tier{},
		&models.TierPrice{},
		&models.AddOn{},
		&models.ServiceRequest{},
		&models.Project{},
		&models.ProjectService{},
		&models.Payment{},
		&models.ProjectEvent{},
		&models.Notification{},
		&models.SystemConfig{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	tiers := []models.Tier{
		{Code: models.TierBronze, Name: "Bronze", BasePrice: 7500, Revisions: 1, DeliveryDays: 10, IsActive: true},
		{Code: models.TierGold, Name: "Gold", BasePrice: 20000, Revisions: 3, DeliveryDays: 5, IsActive: true},
	}
	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("seed tier: %v", err)
		}
	}

	return db
}

// fixture helpers

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := models.User{Email: email, Name: email, Role: role, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createTestCreator(t *testing.T, db *gorm.DB, email string) (*models.User, *models.CreatorProfile) {
	t.Helper()
	user := createTestUser(t, db, email, models.RoleCreator)
	profile := models.CreatorProfile{UserID: user.ID, StudioName: "Studio " + email}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create creator profile: %v", err)
	}
	return user, &profile
}

func createTestRequest(t *testing.T, db *gorm.DB, artist *models.User, status string, creatorID *uint) *models.ServiceRequest {
	t.Helper()
	req := models.ServiceRequest{
		UserID:       artist.ID,
		CreatorID:    creatorID,
		Title:        "Midnight Sessions",
		ArtistName:   "The Night Owls",
		Genre:        "indie",
		ServiceTypes: models.ServiceMixing + "," + models.ServiceMastering,
		TierCode:     models.TierGold,
		Status:       status,
	}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return &req
}
