package auditlog

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/datatypes"
)

type Service interface {
	LogAction(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip string, status string) error
	List(filter ListFilter) ([]AuditLog, int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// LogAction writes one audit row. Serialization failures fall back to an
// entry without details rather than losing the row.
func (s *service) LogAction(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip string, status string) error {
	if status == "" {
		status = "success"
	}

	entry := AuditLog{
		UserID:    userID,
		EventID:   eventID,
		Action:    action,
		IPAddress: ip,
		Status:    status,
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			log.Println("⚠️ audit details not serializable for action", action, ":", err)
		} else {
			entry.Details = datatypes.JSON(raw)
		}
	}
	return s.repo.Create(&entry)
}

func (s *service) List(filter ListFilter) ([]AuditLog, int64, error) {
	return s.repo.List(filter)
}
