package services

import (
	"errors"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type CreatorService struct {
	db *gorm.DB
}

func NewCreatorService(db *gorm.DB) *CreatorService {
	return &CreatorService{db: db}
}

type UpdateProfileRequest struct {
	StudioName string `json:"studio_name" binding:"max=200"`
	Bio        string `json:"bio"`
}

// GetProfile returns the caller's creator profile.
func (s *CreatorService) GetProfile(userID uint) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("creator profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile modifies the caller's own profile fields.
func (s *CreatorService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.CreatorProfile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.StudioName != "" {
		updates["studio_name"] = req.StudioName
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// LinkGatewayAccount stores the connected payout account id for the caller's
// profile. Onboarding and payout flags stay false until the gateway confirms
// them via account.updated.
func (s *CreatorService) LinkGatewayAccount(userID uint, accountID string) (*models.CreatorProfile, error) {
	if accountID == "" {
		return nil, response.NewValidationError("account id required")
	}

	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.CreatorProfile{}).
		Where("gateway_account_id = ? AND id <> ?", accountID, profile.ID).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict("account already linked to another profile")
	}

	if err := s.db.Model(profile).Updates(map[string]interface{}{
		"gateway_account_id": accountID,
		"onboarding_done":    false,
		"payouts_enabled":    false,
	}).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
