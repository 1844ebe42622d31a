package models

import (
	"time"
)

// Payment statuses
const (
	PaymentCompleted = "COMPLETED"
)

// Payment is the immutable record of one completed checkout. SessionID is the
// gateway checkout session id and doubles as the idempotency key: the unique
// index rejects a second insert for the same session.
type Payment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RequestID        uint      `gorm:"not null;index" json:"request_id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	CreatorProfileID *uint     `gorm:"index" json:"creator_profile_id"`
	TotalAmount      int64     `gorm:"not null" json:"total_amount"` // minor units (cents)
	PlatformFee      int64     `gorm:"not null" json:"platform_fee"`
	CreatorAmount    int64     `gorm:"not null" json:"creator_amount"`
	Currency         string    `gorm:"size:10;default:usd" json:"currency"`
	SessionID        string    `gorm:"uniqueIndex;size:255;not null" json:"session_id"`
	IntentID         string    `gorm:"size:255" json:"intent_id"`
	Status           string    `gorm:"size:30;default:COMPLETED" json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Payment) TableName() string { return "payments" }
