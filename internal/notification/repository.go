package notification

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(n *Notification) error
	CreateBatch(ns []Notification) error
	ListByUser(userID uint, unreadOnly bool, limit, offset int) ([]Notification, int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
	UnreadCount(userID uint) (int64, error)

	UpsertDeviceToken(t *FCMDeviceToken) error
	ActiveTokensForUser(userID uint) ([]string, error)
	DeactivateToken(token string) error

	RegistrantUserIDs(eventID uint) ([]uint, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(n *Notification) error {
	return r.db.Create(n).Error
}

func (r *repository) CreateBatch(ns []Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.CreateInBatches(ns, 100).Error
}

func (r *repository) ListByUser(userID uint, unreadOnly bool, limit, offset int) ([]Notification, int64, error) {
	var (
		items []Notification
		total int64
	)
	q := r.db.Model(&Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *repository) MarkRead(userID, notificationID uint) error {
	return r.db.Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *repository) MarkAllRead(userID uint) error {
	return r.db.Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *repository) UnreadCount(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *repository) UpsertDeviceToken(t *FCMDeviceToken) error {
	var existing FCMDeviceToken
	err := r.db.Where("device_token = ?", t.DeviceToken).First(&existing).Error
	if err == nil {
		existing.UserID = t.UserID
		existing.DeviceType = t.DeviceType
		existing.DeviceName = t.DeviceName
		existing.IsActive = true
		existing.LastUsedAt = time.Now().UTC()
		return r.db.Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	t.IsActive = true
	t.LastUsedAt = time.Now().UTC()
	return r.db.Create(t).Error
}

func (r *repository) ActiveTokensForUser(userID uint) ([]string, error) {
	var tokens []string
	err := r.db.Model(&FCMDeviceToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("device_token", &tokens).Error
	return tokens, err
}

func (r *repository) DeactivateToken(token string) error {
	return r.db.Model(&FCMDeviceToken{}).
		Where("device_token = ?", token).
		Update("is_active", false).Error
}

// RegistrantUserIDs goes through the registrations table directly so this
// package does not depend on the registration package.
func (r *repository) RegistrantUserIDs(eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Table("registrations").
		Where("event_id = ?", eventID).
		Pluck("student_id", &ids).Error
	return ids, err
}
