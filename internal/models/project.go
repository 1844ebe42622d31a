package models

import (
	"time"

	"gorm.io/gorm"
)

// Project phases. POST_PRODUCTION exists as a stored value but has no inbound
// edges in the transition table; it is kept for data compatibility only.
const (
	PhasePreProduction  = "PRE_PRODUCTION"
	PhaseProduction     = "PRODUCTION"
	PhaseReview         = "REVIEW"
	PhasePostProduction = "POST_PRODUCTION"
	PhaseCompleted      = "COMPLETED"
)

// Project is the paid, in-production unit of work. Exactly one project exists
// per successfully paid ServiceRequest (unique index on RequestID).
type Project struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	RequestID     uint           `gorm:"uniqueIndex;not null" json:"request_id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Name          string         `gorm:"size:200;not null" json:"name"`
	ArtistName    string         `gorm:"size:200" json:"artist_name"`
	Genre         string         `gorm:"size:100" json:"genre"`
	TierCode      string         `gorm:"size:20" json:"tier_code"`
	CurrentPhase  string         `gorm:"size:30;default:PRE_PRODUCTION" json:"current_phase"`
	RevisionCount int            `gorm:"default:0" json:"revision_count"`
	CompletedAt   *time.Time     `json:"completed_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Services []ProjectService `gorm:"foreignKey:ProjectID" json:"services,omitempty"`
}

func (Project) TableName() string { return "projects" }

// ProjectService binds a project to one service type and the creator profile
// fulfilling it. A creator has access to a project iff one of these rows
// references their profile.
type ProjectService struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProjectID        uint      `gorm:"not null;index" json:"project_id"`
	ServiceType      string    `gorm:"size:30;not null" json:"service_type"`
	CreatorProfileID uint      `gorm:"not null;index" json:"creator_profile_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func (ProjectService) TableName() string { return "project_services" }
