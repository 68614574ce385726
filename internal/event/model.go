package event

import (
	"time"

	"github.com/arvindh25/college-event-backend/internal/auth"
)

// Event status values. Status is advanced by admins/organizers, never
// derived from the clock.
const (
	StatusDraft     = "draft"
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	CategoryTechnical  = "technical"
	CategoryCultural   = "cultural"
	CategorySports     = "sports"
	CategoryWorkshop   = "workshop"
	CategorySeminar    = "seminar"
	CategoryConference = "conference"
	CategoryOther      = "other"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryTechnical, CategoryCultural, CategorySports, CategoryWorkshop,
		CategorySeminar, CategoryConference, CategoryOther:
		return true
	}
	return false
}

// ============================
// 🔷 GORM Event Model
//
// Date carries only the calendar day; StartTime/EndTime carry only the
// clock, normalized to the zero date in UTC. All comparisons happen in
// UTC so there is never a naive/aware mismatch.
type Event struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	EventID             string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"event_id"`
	Title               string    `gorm:"type:varchar(200);not null" json:"title"`
	Description         string    `gorm:"type:text" json:"description"`
	Category            string    `gorm:"type:varchar(50);not null" json:"category"`
	Venue               string    `gorm:"type:varchar(200);not null" json:"venue"`
	Date                time.Time `gorm:"not null;index" json:"date"`
	StartTime           time.Time `gorm:"not null" json:"start_time"`
	EndTime             time.Time `gorm:"not null" json:"end_time"`
	OrganizerID         uint      `gorm:"not null;index" json:"organizer_id"`
	Organizer           auth.User `gorm:"foreignKey:OrganizerID" json:"-"`
	MaxParticipants     int       `gorm:"not null;default:100" json:"max_participants"`
	CurrentParticipants int       `gorm:"not null;default:0" json:"current_participants"`
	Status              string    `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	QRSecret            string    `gorm:"type:varchar(100)" json:"-"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

// CanRegister reports whether a student may still register.
func (e *Event) CanRegister(now time.Time) bool {
	if e.Status != StatusUpcoming && e.Status != StatusOngoing {
		return false
	}
	if e.IsFull() {
		return false
	}
	return !e.Date.Before(dateOnly(now))
}

// ActiveForAttendance reports whether the event currently accepts
// attendance marks: ongoing, scheduled for today, and the wall clock is
// inside [start, end]. Boundaries are inclusive and no grace buffer
// applies here.
func (e *Event) ActiveForAttendance(now time.Time) bool {
	now = now.UTC()
	if e.Status != StatusOngoing {
		return false
	}
	if !sameDay(e.Date, now) {
		return false
	}
	cs := clockSeconds(now)
	return clockSeconds(e.StartTime) <= cs && cs <= clockSeconds(e.EndTime)
}

// StartsAt combines the event date and start clock into a full UTC
// timestamp, the anchor for on-time classification.
func (e *Event) StartsAt() time.Time {
	return time.Date(
		e.Date.Year(), e.Date.Month(), e.Date.Day(),
		e.StartTime.Hour(), e.StartTime.Minute(), e.StartTime.Second(),
		0, time.UTC,
	)
}

// NormalizeClock strips the date from a parsed wall-clock value.
func NormalizeClock(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func clockSeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// ============================
// 🟡 Create Event Request
type CreateEventRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description" binding:"required"`
	Category        string `json:"category" binding:"required"`
	Venue           string `json:"venue" binding:"required"`
	Date            string `json:"date" binding:"required"`       // "2006-01-02"
	StartTime       string `json:"start_time" binding:"required"` // "15:04"
	EndTime         string `json:"end_time" binding:"required"`   // "15:04"
	MaxParticipants int    `json:"max_participants"`
}

// ============================
// 🟠 Update Event Request
type UpdateEventRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description" binding:"required"`
	Category        string `json:"category" binding:"required"`
	Venue           string `json:"venue" binding:"required"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time" binding:"required"`
	MaxParticipants *int   `json:"max_participants,omitempty"`
}

// ============================
// 🟠 Update Status Request
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
