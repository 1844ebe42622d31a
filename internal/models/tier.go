package models

import (
	"time"

	"gorm.io/gorm"
)

// Tier codes
const (
	TierBronze   = "BRONZE"
	TierSilver   = "SILVER"
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"
)

// Tier is a priced service package. BasePrice is the flat price in minor
// currency units; per-service overrides live in TierPrice. CommissionPercent,
// when set, overrides the platform-wide fee percent for requests on this tier.
type Tier struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Code              string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name              string         `gorm:"size:100;not null" json:"name"`
	BasePrice         int64          `gorm:"not null" json:"base_price"` // cents
	Revisions         int            `gorm:"default:1" json:"revisions"`
	DeliveryDays      int            `gorm:"default:7" json:"delivery_days"`
	CommissionPercent *int           `json:"commission_percent"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Prices []TierPrice `gorm:"foreignKey:TierID" json:"prices,omitempty"`
}

func (Tier) TableName() string { return "tiers" }

// TierPrice is a per (tier, service type) price override in cents.
type TierPrice struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TierID      uint      `gorm:"not null;index:idx_tier_service,unique" json:"tier_id"`
	ServiceType string    `gorm:"size:30;not null;index:idx_tier_service,unique" json:"service_type"`
	Price       int64     `gorm:"not null" json:"price"` // cents
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TierPrice) TableName() string { return "tier_prices" }

// AddOn is an optional priced extra attached to a request. PerUnit add-ons are
// charged UnitPrice times the submitted quantity; flat add-ons ignore quantity.
type AddOn struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	Price       int64          `gorm:"default:0" json:"price"`      // flat price, cents
	UnitPrice   int64          `gorm:"default:0" json:"unit_price"` // per-unit price, cents
	PerUnit     bool           `gorm:"default:false" json:"per_unit"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AddOn) TableName() string { return "add_ons" }
