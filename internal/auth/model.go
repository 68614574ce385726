package auth

import (
	"time"
)

// Role is the single capability tag used everywhere instead of ad hoc
// string comparisons scattered across handlers.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleOrganizer:
		return true
	}
	return false
}

// CanMarkOthers reports whether this role may mark attendance on behalf
// of another student (the admin-assisted manual path).
func (r Role) CanMarkOthers() bool {
	return r == RoleAdmin
}

// CanManageEvents reports whether this role may create or edit events.
func (r Role) CanManageEvents() bool {
	return r == RoleAdmin || r == RoleOrganizer
}

// ============================
// 🔷 GORM User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(200)" json:"full_name"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'student';index" json:"role"`
	StudentID    *string   `gorm:"type:varchar(20);uniqueIndex" json:"student_id,omitempty"`
	Department   string    `gorm:"type:varchar(100)" json:"department,omitempty"`
	Phone        string    `gorm:"type:varchar(15)" json:"phone,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName prefers the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// ============================
// 🟡 Register Request
type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FullName   string `json:"full_name" binding:"required"`
	Role       string `json:"role" binding:"required"` // student | organizer
	StudentID  string `json:"student_id,omitempty"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// ============================
// 🟡 Login Request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
