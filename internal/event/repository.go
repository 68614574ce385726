package event

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create Event
func (r *Repository) CreateEvent(e *Event) error {
	return r.DB.Create(e).Error
}

// ===========================
// 🔍 Get Event By numeric ID
func (r *Repository) GetEventByID(id uint) (*Event, error) {
	var e Event
	err := r.DB.First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ===========================
// 🔍 Get Event By public reference (EVxxxxxxxx)
func (r *Repository) GetEventByRef(eventID string) (*Event, error) {
	var e Event
	err := r.DB.Where("event_id = ?", eventID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ===========================
// 📄 List Events With Pagination & Search
func (r *Repository) ListEvents(statuses []string, category, search string, limit, offset int) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.DB.Model(&Event{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR venue ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("date ASC, start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// ===========================
// 🛠 Update Event
func (r *Repository) UpdateEvent(e *Event) error {
	return r.DB.Save(e).Error
}

// ===========================
// 🛠 Update Status only
func (r *Repository) UpdateStatus(id uint, status string) error {
	return r.DB.Model(&Event{}).Where("id = ?", id).Update("status", status).Error
}

// ===========================
// 🔐 Set QR secret, first writer wins
//
// The guard keeps the secret immutable once set: concurrent generate
// requests race to this update and losers simply re-read.
func (r *Repository) SetQRSecretIfEmpty(id uint, secret string) (bool, error) {
	res := r.DB.Model(&Event{}).
		Where("id = ? AND (qr_secret IS NULL OR qr_secret = '')", id).
		Update("qr_secret", secret)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ===========================
// ❌ Delete Event
func (r *Repository) DeleteEvent(id uint) error {
	return r.DB.Delete(&Event{}, id).Error
}
