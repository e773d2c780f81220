package database

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// NotificationRepositoryAdapter implements the NotificationRepository port using GORM
type NotificationRepositoryAdapter struct {
	db *gorm.DB
}

// NewNotificationRepositoryAdapter creates a new notification repository adapter
func NewNotificationRepositoryAdapter(db *gorm.DB) ports.NotificationRepository {
	return &NotificationRepositoryAdapter{db: db}
}

// FindRecent returns the newest matching-title notification since the given time
func (r *NotificationRepositoryAdapter) FindRecent(ctx context.Context, userID uint, titlePattern string, since time.Time) (*ports.NotificationData, error) {
	return r.findRecent(ctx, "title", userID, titlePattern, since)
}

// FindRecentByBody returns the newest matching-body notification since the given time
func (r *NotificationRepositoryAdapter) FindRecentByBody(ctx context.Context, userID uint, bodyPattern string, since time.Time) (*ports.NotificationData, error) {
	return r.findRecent(ctx, "body", userID, bodyPattern, since)
}

func (r *NotificationRepositoryAdapter) findRecent(ctx context.Context, column string, userID uint, pattern string, since time.Time) (*ports.NotificationData, error) {
	var model NotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Where(column+" LIKE ?", "%"+pattern+"%").
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("no recent notification")
		}
		return nil, errors.NewDatabaseError("failed to find recent notification", err)
	}
	return notificationModelToData(&model), nil
}

// Create appends a notification to the log
func (r *NotificationRepositoryAdapter) Create(ctx context.Context, notification *ports.NotificationData) error {
	if notification == nil {
		return errors.NewValidationError("notification cannot be nil")
	}

	model := &NotificationModel{
		UserID:    notification.UserID,
		Title:     notification.Title,
		Body:      notification.Body,
		DeviceID:  notification.DeviceID,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.NewDatabaseError("failed to create notification", err)
	}

	notification.ID = model.ID
	notification.CreatedAt = model.CreatedAt
	return nil
}

// ListByUser returns a page of the user's notifications, newest first
func (r *NotificationRepositoryAdapter) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*ports.NotificationData, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&NotificationModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errors.NewDatabaseError("failed to count notifications", err)
	}

	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, errors.NewDatabaseError("failed to list notifications", err)
	}

	rows := make([]*ports.NotificationData, 0, len(models))
	for i := range models {
		rows = append(rows, notificationModelToData(&models[i]))
	}
	return rows, total, nil
}

// MarkAllRead flags every unread notification of the user as read
func (r *NotificationRepositoryAdapter) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, errors.NewDatabaseError("failed to mark notifications read", result.Error)
	}
	return result.RowsAffected, nil
}

func notificationModelToData(model *NotificationModel) *ports.NotificationData {
	return &ports.NotificationData{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Body:      model.Body,
		DeviceID:  model.DeviceID,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}
