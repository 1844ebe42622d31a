package services

import (
	"errors"
	"strings"

	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

// ProjectService is the read side for projects; phase mutations live on
// LifecycleService.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Phase    string `form:"phase"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

// List returns projects visible to the caller: artists see their own,
// creators see projects they are assigned to, admins see everything.
func (s *ProjectService) List(userID uint, role string, req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Project{})

	switch role {
	case models.RoleAdmin:
		// no scope filter
	case models.RoleCreator:
		var profile models.CreatorProfile
		err := s.db.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			query = query.Where("1 = 0")
		} else if err != nil {
			return nil, err
		} else {
			query = query.Where(
				"id IN (?)",
				s.db.Model(&models.ProjectService{}).
					Select("project_id").
					Where("creator_profile_id = ?", profile.ID),
			)
		}
	default:
		query = query.Where("user_id = ?", userID)
	}

	if req.Phase != "" {
		query = query.Where("current_phase = ?", strings.ToUpper(req.Phase))
	}

	var total int64
	query.Count(&total)

	var items []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Services").
		Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// GetByID returns one project if the caller is its owner, an assigned
// creator, or an admin.
func (s *ProjectService) GetByID(userID uint, role string, projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Services").First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("project not found")
	}
	if err != nil {
		return nil, err
	}

	if !s.hasAccess(&project, userID, role) {
		return nil, response.NewForbidden("no access to this project")
	}
	return &project, nil
}

// Timeline returns the project's append-only event log, oldest first.
func (s *ProjectService) Timeline(userID uint, role string, projectID uint) ([]models.ProjectEvent, error) {
	if _, err := s.GetByID(userID, role, projectID); err != nil {
		return nil, err
	}

	var events []models.ProjectEvent
	if err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *ProjectService) hasAccess(project *models.Project, userID uint, role string) bool {
	if role == models.RoleAdmin || project.UserID == userID {
		return true
	}

	var profile models.CreatorProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return false
	}

	var count int64
	s.db.Model(&models.ProjectService{}).
		Where("project_id = ? AND creator_profile_id = ?", project.ID, profile.ID).
		Count(&count)
	return count > 0
}
