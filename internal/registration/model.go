package registration

import (
	"time"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
)

// ============================
// 🔷 GORM Registration Model
//
// One row per (event, student); the unique index is what makes a
// registration the sole gateway to attendance marking.
type Registration struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	RegistrationID string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"registration_id"`
	EventID        uint        `gorm:"not null;uniqueIndex:idx_registration_event_student" json:"event_id"`
	StudentID      uint        `gorm:"not null;uniqueIndex:idx_registration_event_student" json:"student_id"`
	Event          event.Event `gorm:"foreignKey:EventID" json:"-"`
	Student        auth.User   `gorm:"foreignKey:StudentID" json:"-"`
	RegisteredAt   time.Time   `gorm:"autoCreateTime" json:"registered_at"`
	Attended       bool        `gorm:"not null;default:false" json:"attended"`
	AttendanceTime *time.Time  `json:"attendance_time,omitempty"`
	Feedback       string      `gorm:"type:text" json:"feedback,omitempty"`
	Rating         *int        `json:"rating,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}
