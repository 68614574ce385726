package attendance

import (
	"time"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/registration"
)

// Marking methods.
const (
	MethodQR     = "qr"
	MethodManual = "manual"
	MethodFace   = "face"
	MethodNFC    = "nfc"
)

// Derived mark status (never stored). "absent" belongs to registrations
// without a record, not to records.
const (
	StatusOnTime = "on_time"
	StatusLate   = "late"
)

// GracePeriod is the window after an event's start time during which a
// mark still counts as on-time. It classifies marks only; the
// eligibility window in Event.ActiveForAttendance uses the raw wall
// clock and gets no grace.
const GracePeriod = 15 * time.Minute

func ValidMethod(m string) bool {
	switch m {
	case MethodQR, MethodManual, MethodFace, MethodNFC:
		return true
	}
	return false
}

// ============================
// 🔷 GORM AttendanceRecord Model
//
// The composite unique index on (event_id, student_id) is the central
// consistency guarantee: at most one record per pair, enforced by the
// store even under concurrent marking.
type AttendanceRecord struct {
	ID             uint                      `gorm:"primaryKey" json:"id"`
	AttendanceID   string                    `gorm:"type:varchar(20);uniqueIndex;not null" json:"attendance_id"`
	EventID        uint                      `gorm:"not null;uniqueIndex:idx_attendance_event_student" json:"event_id"`
	StudentID      uint                      `gorm:"not null;uniqueIndex:idx_attendance_event_student" json:"student_id"`
	RegistrationID uint                      `gorm:"not null" json:"registration_id"`
	Event          event.Event               `gorm:"foreignKey:EventID" json:"-"`
	Student        auth.User                 `gorm:"foreignKey:StudentID" json:"-"`
	Registration   registration.Registration `gorm:"foreignKey:RegistrationID" json:"-"`
	Method         string                    `gorm:"type:varchar(20);not null;default:'qr'" json:"method"`
	MarkedByID     *uint                     `gorm:"index" json:"marked_by_id,omitempty"`
	MarkedAt       time.Time                 `gorm:"not null;index" json:"marked_at"`
	Latitude       *float64                  `json:"latitude,omitempty"`
	Longitude      *float64                  `json:"longitude,omitempty"`
	DeviceInfo     string                    `gorm:"type:varchar(200)" json:"device_info,omitempty"`
	Verified       bool                      `gorm:"not null;default:true" json:"verified"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// MarkStatus classifies this record against the event schedule.
func (r *AttendanceRecord) MarkStatus(e *event.Event) string {
	if onTime(e, r.MarkedAt) {
		return StatusOnTime
	}
	return StatusLate
}

// onTime compares the UTC mark timestamp against start + grace. Both
// sides are full UTC timestamps, so there is no offset-awareness branch.
func onTime(e *event.Event, markedAt time.Time) bool {
	deadline := e.StartsAt().Add(GracePeriod)
	return !markedAt.UTC().After(deadline)
}

// ============================
// 🟡 Request DTOs

type QRMarkRequest struct {
	QRData     string   `json:"qr_data" binding:"required"`
	DeviceInfo string   `json:"device_info,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type ManualMarkRequest struct {
	EventCode string `json:"event_code" binding:"required"`
	// StudentID is a lookup key (college student id or username). Ignored
	// unless the operator is an admin.
	StudentID  string `json:"student_id,omitempty"`
	DeviceInfo string `json:"device_info,omitempty"`
}

type VerifyRequest struct {
	Verified bool `json:"verified"`
}
