package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arvindh25/college-event-backend/internal/auditlog"
	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/notification"
	"github.com/arvindh25/college-event-backend/utils"
)

// Service wraps registration business logic
type Service struct {
	Repo      *Repository
	EventRepo *event.Repository
	AuditSvc  auditlog.Service
	NotifSvc  notification.Service

	Now func() time.Time
}

func NewService(r *Repository, eventRepo *event.Repository, auditSvc auditlog.Service, notifSvc notification.Service) *Service {
	return &Service{
		Repo:      r,
		EventRepo: eventRepo,
		AuditSvc:  auditSvc,
		NotifSvc:  notifSvc,
		Now:       time.Now,
	}
}

// ===========================
// 🎯 Register a student for an event
func (s *Service) Register(ctx context.Context, eventRef string, student *auth.User, ip string) (*Registration, error) {
	if student.Role != auth.RoleStudent {
		return nil, errors.New("only students can register for events")
	}

	e, err := s.EventRepo.GetEventByRef(eventRef)
	if err != nil {
		return nil, errors.New("event not found")
	}

	if !e.CanRegister(s.Now()) {
		return nil, errors.New("registration closed for this event")
	}

	reg := &Registration{
		RegistrationID: utils.NewRefID("REG"),
		EventID:        e.ID,
		StudentID:      student.ID,
	}

	if err := s.Repo.CreateWithOccupancy(ctx, reg); err != nil {
		s.logAction(&student.ID, &e.ID, "REGISTRATION_CREATED", map[string]interface{}{
			"event_ref": e.EventID,
			"error":     err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.logAction(&student.ID, &e.ID, "REGISTRATION_CREATED", map[string]interface{}{
		"event_ref":        e.EventID,
		"registration_ref": reg.RegistrationID,
	}, ip, "success")

	if s.NotifSvc != nil {
		_ = s.NotifSvc.CreateInApp(ctx, student.ID,
			"Event Registration",
			fmt.Sprintf("You have successfully registered for %q", e.Title),
			notification.CategoryEvent, &e.ID)
	}

	return reg, nil
}

// ===========================
// ❌ Cancel a registration (admin action; also releases the slot and is
// the only path that decrements occupancy)
func (s *Service) Cancel(ctx context.Context, ref string, actor *auth.User, ip string) error {
	if actor.Role != auth.RoleAdmin {
		return errors.New("only admins can remove registrations")
	}

	reg, err := s.Repo.GetByRef(ctx, ref)
	if err != nil {
		return errors.New("registration not found")
	}

	if err := s.Repo.DeleteWithOccupancy(ctx, reg); err != nil {
		s.logAction(&actor.ID, &reg.EventID, "REGISTRATION_DELETED", map[string]interface{}{
			"registration_ref": reg.RegistrationID,
			"error":            err.Error(),
		}, ip, "failure")
		return err
	}

	s.logAction(&actor.ID, &reg.EventID, "REGISTRATION_DELETED", map[string]interface{}{
		"registration_ref": reg.RegistrationID,
		"student_id":       reg.StudentID,
	}, ip, "success")

	return nil
}

// ===========================
// 📄 Listings
func (s *Service) ListMine(ctx context.Context, student *auth.User) ([]Registration, error) {
	return s.Repo.ListByStudent(ctx, student.ID)
}

func (s *Service) ListForEvent(ctx context.Context, eventRef string, actor *auth.User) ([]Registration, error) {
	if !actor.Role.CanManageEvents() {
		return nil, errors.New("read access denied")
	}

	e, err := s.EventRepo.GetEventByRef(eventRef)
	if err != nil {
		return nil, errors.New("event not found")
	}

	if actor.Role == auth.RoleOrganizer && e.OrganizerID != actor.ID {
		return nil, errors.New("read access denied")
	}

	return s.Repo.ListByEvent(ctx, e.ID)
}

func (s *Service) logAction(userID, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	_ = s.AuditSvc.LogAction(context.Background(), userID, eventID, action, details, ip, status)
}
