package notification

import (
	"time"
)

// In-app notification categories.
const (
	CategoryEvent      = "event"
	CategoryAttendance = "attendance"
	CategorySystem     = "system"
	CategoryReminder   = "reminder"
)

// 1. Notification - per-user, in-app bell notifications
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Category  string    `gorm:"size:30;not null" json:"category"`
	EventID   *uint     `gorm:"index" json:"event_id,omitempty"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// 2. FCMDeviceToken - stores user device tokens for push notifications
type FCMDeviceToken struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_user_token" json:"user_id"`
	DeviceToken string    `gorm:"size:255;not null;index:idx_user_token,unique" json:"device_token"`
	DeviceType  string    `gorm:"size:20" json:"device_type"` // android, ios, web
	DeviceName  string    `gorm:"size:100" json:"device_name"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	LastUsedAt  time.Time `json:"last_used_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (FCMDeviceToken) TableName() string {
	return "fcm_device_tokens"
}

// AttendanceMarkedMessage is the Kafka payload published by the
// attendance marker after a successful commit. The consumer turns it
// into in-app rows, push messages and email.
type AttendanceMarkedMessage struct {
	StudentID     uint      `json:"student_id"`
	StudentName   string    `json:"student_name"`
	StudentEmail  string    `json:"student_email,omitempty"`
	OperatorID    uint      `json:"operator_id,omitempty"`
	OperatorName  string    `json:"operator_name,omitempty"`
	EventID       uint      `json:"event_id"`
	EventRef      string    `json:"event_ref"`
	EventTitle    string    `json:"event_title"`
	OrganizerID   uint      `json:"organizer_id"`
	Method        string    `json:"method"`
	MarkedAt      time.Time `json:"marked_at"`
	AdminAssisted bool      `json:"admin_assisted"`
}
