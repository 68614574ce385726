package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records who did what. UserID and EventID are nullable so
// system actions and pre-auth failures can still be logged.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id,omitempty"`
	EventID   *uint          `gorm:"index" json:"event_id,omitempty"`
	Action    string         `gorm:"size:60;not null;index" json:"action"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	Status    string         `gorm:"size:20;not null;default:success" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
