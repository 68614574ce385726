package event

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/arvindh25/college-event-backend/internal/auditlog"
	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/notification"
	"github.com/arvindh25/college-event-backend/utils"
)

// Service wraps business logic for college events
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
	NotifSvc notification.Service
}

func NewService(r *Repository, auditSvc auditlog.Service, notifSvc notification.Service) *Service {
	return &Service{
		Repo:     r,
		AuditSvc: auditSvc,
		NotifSvc: notifSvc,
	}
}

// ===========================
// 🎯 Create Event
func (s *Service) CreateEvent(req *CreateEventRequest, organizer *auth.User, ip string) (*Event, error) {
	if !organizer.Role.CanManageEvents() {
		return nil, errors.New("only admins and organizers can create events")
	}

	if !ValidCategory(req.Category) {
		return nil, errors.New("invalid category")
	}

	date, startTime, endTime, err := parseSchedule(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		s.logAction(&organizer.ID, nil, "EVENT_CREATED", map[string]interface{}{
			"title": req.Title,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = 100
	}

	e := &Event{
		EventID:         utils.NewRefID("EV"),
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Venue:           req.Venue,
		Date:            date,
		StartTime:       startTime,
		EndTime:         endTime,
		OrganizerID:     organizer.ID,
		MaxParticipants: maxParticipants,
		Status:          StatusUpcoming,
	}

	if err := s.Repo.CreateEvent(e); err != nil {
		s.logAction(&organizer.ID, nil, "EVENT_CREATED", map[string]interface{}{
			"title": req.Title,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.logAction(&organizer.ID, &e.ID, "EVENT_CREATED", map[string]interface{}{
		"event_ref": e.EventID,
		"title":     e.Title,
		"category":  e.Category,
		"date":      e.Date.Format("2006-01-02"),
	}, ip, "success")

	return e, nil
}

// ===========================
// 🔍 Get Event
func (s *Service) GetEventByRef(ref string) (*Event, error) {
	return s.Repo.GetEventByRef(ref)
}

// ===========================
// 📄 List Events. Students only see upcoming/ongoing events.
func (s *Service) ListEvents(viewer *auth.User, statuses []string, category, search string, limit, offset int) ([]Event, int64, error) {
	if viewer.Role == auth.RoleStudent {
		statuses = []string{StatusUpcoming, StatusOngoing}
	}
	return s.Repo.ListEvents(statuses, category, search, limit, offset)
}

// ===========================
// 🛠 Update Event (with ownership check and audit logging)
func (s *Service) UpdateEvent(ref string, req *UpdateEventRequest, actor *auth.User, ip string) (*Event, error) {
	e, err := s.ownedEvent(ref, actor)
	if err != nil {
		return nil, err
	}

	if !ValidCategory(req.Category) {
		return nil, errors.New("invalid category")
	}

	date, startTime, endTime, err := parseSchedule(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	e.Title = req.Title
	e.Description = req.Description
	e.Category = req.Category
	e.Venue = req.Venue
	e.Date = date
	e.StartTime = startTime
	e.EndTime = endTime
	if req.MaxParticipants != nil {
		if *req.MaxParticipants < e.CurrentParticipants {
			return nil, errors.New("max_participants cannot drop below current registrations")
		}
		e.MaxParticipants = *req.MaxParticipants
	}

	if err := s.Repo.UpdateEvent(e); err != nil {
		s.logAction(&actor.ID, &e.ID, "EVENT_UPDATED", map[string]interface{}{
			"event_ref": e.EventID,
			"error":     err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.logAction(&actor.ID, &e.ID, "EVENT_UPDATED", map[string]interface{}{
		"event_ref": e.EventID,
		"title":     e.Title,
	}, ip, "success")

	if s.NotifSvc != nil {
		_ = s.NotifSvc.CreateInAppForEventRegistrants(context.Background(), e.ID,
			"Event Updated",
			fmt.Sprintf("%q has been updated for %s", e.Title, e.Date.Format("2006-01-02")),
			notification.CategoryEvent,
		)
	}

	return e, nil
}

// ===========================
// 🛠 Advance Status (externally driven, never from the clock)
func (s *Service) UpdateStatus(ref, status string, actor *auth.User, ip string) (*Event, error) {
	e, err := s.ownedEvent(ref, actor)
	if err != nil {
		return nil, err
	}

	if !ValidStatus(status) {
		return nil, errors.New("invalid status")
	}

	if err := s.Repo.UpdateStatus(e.ID, status); err != nil {
		return nil, err
	}
	e.Status = status

	s.logAction(&actor.ID, &e.ID, "EVENT_STATUS_CHANGED", map[string]interface{}{
		"event_ref": e.EventID,
		"status":    status,
	}, ip, "success")

	return e, nil
}

// ===========================
// ❌ Delete Event (admin only)
func (s *Service) DeleteEvent(ref string, actor *auth.User, ip string) error {
	if actor.Role != auth.RoleAdmin {
		return errors.New("only admins can delete events")
	}

	e, err := s.Repo.GetEventByRef(ref)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteEvent(e.ID); err != nil {
		s.logAction(&actor.ID, &e.ID, "EVENT_DELETED", map[string]interface{}{
			"event_ref": e.EventID,
			"error":     err.Error(),
		}, ip, "failure")
		return err
	}

	s.logAction(&actor.ID, &e.ID, "EVENT_DELETED", map[string]interface{}{
		"event_ref": e.EventID,
		"title":     e.Title,
	}, ip, "success")

	return nil
}

// ===========================
// 🔐 QR payload for organizer display boards
//
// The secret is generated lazily on first request and immutable after.
// Payload format: "<event_id>|<qr_secret>".
func (s *Service) QRPayload(ref string, actor *auth.User) (string, error) {
	if !actor.Role.CanManageEvents() {
		return "", errors.New("permission denied for this event")
	}

	e, err := s.Repo.GetEventByRef(ref)
	if err != nil {
		return "", err
	}

	if actor.Role == auth.RoleOrganizer && e.OrganizerID != actor.ID {
		return "", errors.New("permission denied for this event")
	}

	if e.QRSecret == "" {
		secret := newQRSecret()
		set, err := s.Repo.SetQRSecretIfEmpty(e.ID, secret)
		if err != nil {
			return "", err
		}
		if set {
			e.QRSecret = secret
		} else {
			// another request generated it first
			e, err = s.Repo.GetEventByID(e.ID)
			if err != nil {
				return "", err
			}
		}
	}

	return fmt.Sprintf("%s|%s", e.EventID, e.QRSecret), nil
}

// ===========================
// internal helpers

func (s *Service) ownedEvent(ref string, actor *auth.User) (*Event, error) {
	if !actor.Role.CanManageEvents() {
		return nil, errors.New("write access denied")
	}

	e, err := s.Repo.GetEventByRef(ref)
	if err != nil {
		return nil, err
	}

	if actor.Role == auth.RoleOrganizer && e.OrganizerID != actor.ID {
		return nil, errors.New("unauthorized: not the organizer of this event")
	}

	return e, nil
}

func (s *Service) logAction(userID, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	_ = s.AuditSvc.LogAction(context.Background(), userID, eventID, action, details, ip, status)
}

func parseSchedule(dateStr, startStr, endStr string) (date, startTime, endTime time.Time, err error) {
	date, err = time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return date, startTime, endTime, errors.New("invalid date format. Use YYYY-MM-DD")
	}

	start, err := time.Parse("15:04", startStr)
	if err != nil {
		return date, startTime, endTime, errors.New("invalid start_time format. Use HH:MM in 24-hour format")
	}
	end, err := time.Parse("15:04", endStr)
	if err != nil {
		return date, startTime, endTime, errors.New("invalid end_time format. Use HH:MM in 24-hour format")
	}

	startTime = NormalizeClock(start)
	endTime = NormalizeClock(end)
	if !startTime.Before(endTime) {
		return date, startTime, endTime, errors.New("start_time must be before end_time")
	}

	return date, startTime, endTime, nil
}

func newQRSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
