package models

import (
	"time"
)

// Notification types
const (
	NotifyRequestUpdate = "REQUEST_UPDATE"
	NotifyPayment       = "PAYMENT"
	NotifyProjectUpdate = "PROJECT_UPDATE"
)

// Notification is a per-user inbox entry, created as a side effect of
// lifecycle transitions and mutated only by read-state toggling.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"size:1000" json:"message"`
	Link      string    `gorm:"size:500" json:"link"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
