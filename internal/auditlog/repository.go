package auditlog

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(entry *AuditLog) error
	List(filter ListFilter) ([]AuditLog, int64, error)
}

// ListFilter narrows the audit trail query; zero values mean no filter.
type ListFilter struct {
	UserID  uint
	EventID uint
	Action  string
	Limit   int
	Offset  int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(entry *AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *repository) List(filter ListFilter) ([]AuditLog, int64, error) {
	var (
		items []AuditLog
		total int64
	)

	q := r.db.Model(&AuditLog{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.EventID != 0 {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&items).Error
	return items, total, err
}
