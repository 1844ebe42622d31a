package models

import (
	"time"
)

// ProjectEvent types
const (
	EventRequestCreated   = "REQUEST_CREATED"
	EventStatusChanged    = "STATUS_CHANGED"
	EventCreatorRejected  = "CREATOR_REJECTED"
	EventPaymentCompleted = "PAYMENT_COMPLETED"
	EventPhaseChanged     = "PHASE_CHANGED"
)

// ProjectEvent is an append-only timeline entry. Rows are never updated or
// deleted; one row is written per side-effecting action, inside the same
// transaction as the mutation it describes.
type ProjectEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   *uint     `gorm:"index" json:"request_id"`
	ProjectID   *uint     `gorm:"index" json:"project_id"`
	Type        string    `gorm:"size:40;not null" json:"type"`
	Description string    `gorm:"size:500" json:"description"`
	ActorID     *uint     `json:"actor_id"` // acting user, nil for gateway-driven events
	Metadata    string    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ProjectEvent) TableName() string { return "project_events" }
