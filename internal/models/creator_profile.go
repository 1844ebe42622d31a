package models

import (
	"time"

	"gorm.io/gorm"
)

// CreatorProfile holds the engineer-side data for a CREATOR user, including
// the payout account state synced from the payment gateway.
type CreatorProfile struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	StudioName       string         `gorm:"size:200" json:"studio_name"`
	Bio              string         `gorm:"type:text" json:"bio"`
	GatewayAccountID string         `gorm:"size:255;index" json:"-"` // connected payout account at the gateway
	OnboardingDone   bool           `gorm:"default:false" json:"onboarding_done"`
	PayoutsEnabled   bool           `gorm:"default:false" json:"payouts_enabled"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CreatorProfile) TableName() string { return "creator_profiles" }
