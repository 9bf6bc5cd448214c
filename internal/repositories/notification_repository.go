package repositories

import (
	"context"
	"time"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notificationInsertBatch = 100

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) (bool, error)
	CreateNotifications(ctx context.Context, notifications []models.Notification) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetRecent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetGrouped(ctx context.Context, recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, err error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
	DeleteNotification(ctx context.Context, notificationID uint) error
	CountReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// skipDuplicates turns an insert into a no-op for rows whose dedup key exists.
// Rows without a dedup key (NULL) never conflict.
var skipDuplicates = clause.OnConflict{
	Columns:   []clause.Column{{Name: "dedup_key"}},
	DoNothing: true,
}

// CreateNotification reports whether a row was written; false means the
// dedup key was already present.
func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(skipDuplicates).Create(notification)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(skipDuplicates).CreateInBatches(notifications, notificationInsertBatch)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetRecent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, retErr error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	db := r.db.WithContext(ctx)

	// Today
	if err := db.Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Order("created_at DESC").Find(&today).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// Yesterday
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&yesterday).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// This week (excluding today and yesterday)
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&thisWeek).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// Older
	if err := db.Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Order("created_at DESC").Limit(50).Find(&older).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	return today, yesterday, thisWeek, older, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead only touches unread rows, so repeating it changes nothing.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", notificationID, false).
		Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteNotification(ctx context.Context, notificationID uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, notificationID).Error
}

func (r *postgresNotificationRepository) CountReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
