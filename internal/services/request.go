package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type RequestService struct {
	db    *gorm.DB
	tiers *TierService
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db, tiers: NewTierService(db)}
}

type CreateRequestRequest struct {
	Title        string   `json:"title" binding:"required,max=200"`
	ArtistName   string   `json:"artist_name" binding:"max=200"`
	Genre        string   `json:"genre" binding:"max=100"`
	Description  string   `json:"description"`
	ServiceTypes []string `json:"service_types" binding:"required,min=1,dive,oneof=MIXING MASTERING RECORDING"`
	Tier         string   `json:"tier" binding:"required"`
}

type RequestListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Status   string `form:"status"`
}

type RequestListResponse struct {
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Items    []models.ServiceRequest `json:"items"`
}

// Create opens a new PENDING request for the calling artist. The tier is
// validated against the catalog; the creation is recorded on the timeline in
// the same transaction.
func (s *RequestService) Create(userID uint, req *CreateRequestRequest) (*models.ServiceRequest, error) {
	tier, err := s.tiers.GetByCode(req.Tier)
	if err != nil {
		if _, ok := response.IsAppError(err); ok {
			return nil, response.NewValidationError("invalid tier: " + req.Tier)
		}
		return nil, err
	}

	seen := make(map[string]bool)
	var types []string
	for _, t := range req.ServiceTypes {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}

	request := models.ServiceRequest{
		UserID:          userID,
		Title:           req.Title,
		ArtistName:      req.ArtistName,
		Genre:           req.Genre,
		Description:     req.Description,
		ServiceTypes:    strings.Join(types, ","),
		TierCode:        tier.Code,
		Status:          models.RequestPending,
		StatusUpdatedAt: time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		event := models.ProjectEvent{
			RequestID:   &request.ID,
			Type:        models.EventRequestCreated,
			Description: fmt.Sprintf("Request created for %s (%s tier)", strings.Join(types, ", "), tier.Code),
			ActorID:     &userID,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests visible to the caller. Artists see their own;
// creators see the unclaimed PENDING pool plus requests assigned to them;
// admins see everything.
func (s *RequestService) List(userID uint, role string, req *RequestListRequest) (*RequestListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.ServiceRequest{})

	switch role {
	case models.RoleAdmin:
		// no scope filter
	case models.RoleCreator:
		var profile models.CreatorProfile
		err := s.db.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			query = query.Where("status = ? AND creator_id IS NULL", models.RequestPending)
		} else if err != nil {
			return nil, err
		} else {
			query = query.Where("(status = ? AND creator_id IS NULL) OR creator_id = ?",
				models.RequestPending, profile.ID)
		}
	default:
		query = query.Where("user_id = ?", userID)
	}

	if req.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(req.Status))
	}

	var total int64
	query.Count(&total)

	var items []models.ServiceRequest
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &RequestListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// GetByID returns one request if the caller may see it: the owner, an admin,
// the assigned creator, or any creator while it sits unclaimed in the pool.
func (s *RequestService) GetByID(userID uint, role string, requestID uint) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}

	if request.UserID == userID || role == models.RoleAdmin {
		return &request, nil
	}
	if role == models.RoleCreator {
		if request.Status == models.RequestPending && request.CreatorID == nil {
			return &request, nil
		}
		var profile models.CreatorProfile
		if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err == nil {
			if request.CreatorID != nil && *request.CreatorID == profile.ID {
				return &request, nil
			}
		}
	}
	return nil, response.NewForbidden("no access to this request")
}

// Timeline returns the append-only event log for a request, oldest first.
// Visibility follows GetByID.
func (s *RequestService) Timeline(userID uint, role string, requestID uint) ([]models.ProjectEvent, error) {
	if _, err := s.GetByID(userID, role, requestID); err != nil {
		return nil, err
	}

	var events []models.ProjectEvent
	if err := s.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
