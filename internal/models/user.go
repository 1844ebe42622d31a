package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleArtist  = "ARTIST"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

// User represents a platform account (artist, creator or admin)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	Name      string         `gorm:"size:100" json:"name"`
	Role      string         `gorm:"size:20;default:ARTIST" json:"role"` // ARTIST, CREATOR, ADMIN
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
