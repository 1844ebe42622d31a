package services

import (
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateInTx inserts an inbox notification using the caller's transaction so
// it commits or rolls back together with the triggering mutation. Email
// delivery is queued best-effort; the inbox row is authoritative.
func (s *NotificationService) CreateInTx(tx *gorm.DB, userID uint, notifType, title, message, link string) error {
	n := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := tx.Create(&n).Error; err != nil {
		return err
	}

	EnqueueNotify(&NotifyTask{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    link,
	})
	return nil
}

type NotificationListRequest struct {
	Page     int   `form:"page" binding:"min=1"`
	PageSize int   `form:"page_size" binding:"min=1,max=100"`
	Unread   *bool `form:"unread"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Unread   int64                 `json:"unread"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

// List returns the caller's inbox, newest first.
func (s *NotificationService) List(userID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if req.Unread != nil && *req.Unread {
		query = query.Where("read = ?", false)
	}

	var total int64
	query.Count(&total)

	var unread int64
	s.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Unread:   unread,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// MarkRead toggles the read flag on one notification owned by userID.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	var n models.Notification
	if err := s.db.First(&n, notificationID).Error; err != nil {
		return response.NewNotFound("notification not found")
	}
	if n.UserID != userID {
		return response.NewForbidden("not your notification")
	}
	return s.db.Model(&n).Update("read", true).Error
}

// MarkAllRead flags every unread notification for userID as read.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
