package reports

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	AttendanceRows(eventRef string, from, to *time.Time) ([]AttendanceReportRow, error)
	EventSummaryRows(status, category string) ([]EventSummaryRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) AttendanceRows(eventRef string, from, to *time.Time) ([]AttendanceReportRow, error) {
	var rows []AttendanceReportRow

	q := r.db.Table("attendance_records AS a").
		Select(`a.attendance_id, e.event_id AS event_ref, e.title AS event_title,
			e.date AS event_date, e.start_time AS event_start_time,
			COALESCE(s.student_id, s.username) AS student_id,
			COALESCE(NULLIF(s.full_name, ''), s.username) AS student_name,
			a.method, a.marked_at, a.verified, a.device_info, a.latitude, a.longitude,
			COALESCE(o.full_name, '') AS marked_by`).
		Joins("JOIN events e ON e.id = a.event_id").
		Joins("JOIN users s ON s.id = a.student_id").
		Joins("LEFT JOIN users o ON o.id = a.marked_by_id")

	if eventRef != "" {
		q = q.Where("e.event_id = ?", eventRef)
	}
	if from != nil {
		q = q.Where("a.marked_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("a.marked_at < ?", *to)
	}

	err := q.Order("a.marked_at DESC").Scan(&rows).Error
	return rows, err
}

func (r *repository) EventSummaryRows(status, category string) ([]EventSummaryRow, error) {
	var rows []EventSummaryRow

	q := r.db.Table("events AS e").
		Select(`e.event_id AS event_ref, e.title, e.category, e.date, e.status,
			COUNT(r.id) AS registered,
			COUNT(r.id) FILTER (WHERE r.attended) AS attended`).
		Joins("LEFT JOIN registrations r ON r.event_id = e.id").
		Group("e.id")

	if status != "" {
		q = q.Where("e.status = ?", status)
	}
	if category != "" {
		q = q.Where("e.category = ?", category)
	}

	err := q.Order("e.date DESC").Scan(&rows).Error
	return rows, err
}
