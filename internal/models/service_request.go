package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ServiceRequest statuses
const (
	RequestPending         = "PENDING"
	RequestInReview        = "IN_REVIEW"
	RequestAccepted        = "ACCEPTED"
	RequestAwaitingPayment = "AWAITING_PAYMENT"
	RequestPaid            = "PAID"
	RequestCancelled       = "CANCELLED"
)

// Service types
const (
	ServiceMixing    = "MIXING"
	ServiceMastering = "MASTERING"
	ServiceRecording = "RECORDING"
)

// ServiceRequest is an artist's pre-payment ask for a service.
// CreatorID is null while the request is unclaimed (PENDING) and set once a
// creator has claimed it.
type ServiceRequest struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	CreatorID          *uint          `gorm:"index" json:"creator_id"` // CreatorProfile ID, nil while PENDING
	Title              string         `gorm:"size:200;not null" json:"title"`
	ArtistName         string         `gorm:"size:200" json:"artist_name"`
	Genre              string         `gorm:"size:100" json:"genre"`
	Description        string         `gorm:"type:text" json:"description"`
	ServiceTypes       string         `gorm:"size:100;not null" json:"service_types"` // comma-separated: MIXING,MASTERING
	TierCode           string         `gorm:"size:20;not null" json:"tier_code"`
	Status             string         `gorm:"size:30;default:PENDING;index" json:"status"`
	StatusUpdatedAt    time.Time      `json:"status_updated_at"`
	CancelledAt        *time.Time     `json:"cancelled_at"`
	CompletedAt        *time.Time     `json:"completed_at"`
	CancellationReason string         `gorm:"size:500" json:"cancellation_reason"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ServiceRequest) TableName() string { return "service_requests" }

// ServiceTypeList returns the requested service types as a slice.
func (r *ServiceRequest) ServiceTypeList() []string {
	var types []string
	for _, t := range strings.Split(r.ServiceTypes, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			types = append(types, t)
		}
	}
	return types
}
