package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/arvindh25/college-event-backend/utils"
)

// PushChannel delivers a push message to a set of device tokens. The
// first return value lists tokens the provider reported as dead
// (unregistered or malformed) so the caller can retire them.
// Implemented by the FCM channel; nil when Firebase is not configured.
type PushChannel interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error)
}

// EmailChannel delivers an email. Implemented by the SMTP channel.
type EmailChannel interface {
	Send(to, subject, body string) error
}

type Service interface {
	CreateInApp(ctx context.Context, userID uint, title, message, category string, eventID *uint) error
	CreateInAppForEventRegistrants(ctx context.Context, eventID uint, title, message, category string) error
	PublishAttendanceMarked(ctx context.Context, msg AttendanceMarkedMessage) error
	HandleAttendanceMarked(ctx context.Context, payload []byte) error

	List(userID uint, unreadOnly bool, limit, offset int) ([]Notification, int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
	UnreadCount(userID uint) (int64, error)
	RegisterDeviceToken(userID uint, token, deviceType, deviceName string) error
}

type service struct {
	repo  Repository
	push  PushChannel
	email EmailChannel
}

// NewService wires the notification service. push and email may be nil;
// delivery on those channels is then skipped.
func NewService(repo Repository, push PushChannel, email EmailChannel) Service {
	return &service{repo: repo, push: push, email: email}
}

// ===========================
// 🔔 In-app notifications
// ===========================

func (s *service) CreateInApp(ctx context.Context, userID uint, title, message, category string, eventID *uint) error {
	if userID == 0 {
		return errors.New("user id required")
	}
	n := Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Category: category,
		EventID:  eventID,
	}
	return s.repo.Create(&n)
}

// CreateInAppForEventRegistrants fans one notification out to every
// registered student of an event. Used for event updates and reminders.
func (s *service) CreateInAppForEventRegistrants(ctx context.Context, eventID uint, title, message, category string) error {
	ids, err := s.repo.RegistrantUserIDs(eventID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	batch := make([]Notification, 0, len(ids))
	eid := eventID
	for _, id := range ids {
		batch = append(batch, Notification{
			UserID:   id,
			Title:    title,
			Message:  message,
			Category: category,
			EventID:  &eid,
		})
	}
	return s.repo.CreateBatch(batch)
}

// ===========================
// 📣 Attendance fan-out (Kafka)
// ===========================

// PublishAttendanceMarked serializes the message onto the attendance
// topic. Keyed by event ref so records of one event stay ordered.
func (s *service) PublishAttendanceMarked(ctx context.Context, msg AttendanceMarkedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return utils.PublishAttendanceEvent(ctx, msg.EventRef, payload)
}

// HandleAttendanceMarked is the consumer side: one Kafka message in,
// in-app rows plus push delivery out. Partial delivery failures are
// logged, not returned, so the consumer keeps committing offsets.
func (s *service) HandleAttendanceMarked(ctx context.Context, payload []byte) error {
	var msg AttendanceMarkedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}

	eid := msg.EventID
	studentBody := fmt.Sprintf("Your attendance for %s was recorded at %s.",
		msg.EventTitle, msg.MarkedAt.Format("15:04 MST"))
	if msg.AdminAssisted {
		studentBody = fmt.Sprintf("Your attendance for %s was recorded by %s at %s.",
			msg.EventTitle, msg.OperatorName, msg.MarkedAt.Format("15:04 MST"))
	}

	if err := s.CreateInApp(ctx, msg.StudentID, "Attendance recorded", studentBody, CategoryAttendance, &eid); err != nil {
		log.Println("❌ in-app notification failed for user", msg.StudentID, ":", err)
	}

	if msg.AdminAssisted && msg.OrganizerID != 0 && msg.OrganizerID != msg.OperatorID {
		orgBody := fmt.Sprintf("%s marked %s present for %s.",
			msg.OperatorName, msg.StudentName, msg.EventTitle)
		if err := s.CreateInApp(ctx, msg.OrganizerID, "Attendance marked", orgBody, CategoryAttendance, &eid); err != nil {
			log.Println("❌ in-app notification failed for organizer", msg.OrganizerID, ":", err)
		}
	}

	s.pushToUser(ctx, msg.StudentID, "Attendance recorded", studentBody, map[string]string{
		"event_id":  strconv.FormatUint(uint64(msg.EventID), 10),
		"event_ref": msg.EventRef,
		"category":  CategoryAttendance,
	})

	if s.email != nil && msg.StudentEmail != "" {
		if err := s.email.Send(msg.StudentEmail, "Attendance recorded: "+msg.EventTitle, studentBody); err != nil {
			log.Println("❌ email delivery failed for user", msg.StudentID, ":", err)
		}
	}
	return nil
}

func (s *service) pushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) {
	if s.push == nil {
		return
	}
	tokens, err := s.repo.ActiveTokensForUser(userID)
	if err != nil {
		log.Println("❌ fetching device tokens failed for user", userID, ":", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	invalid, err := s.push.Send(ctx, tokens, title, body, data)
	if err != nil {
		log.Println("❌ push delivery failed for user", userID, ":", err)
	}
	for _, tok := range invalid {
		if err := s.repo.DeactivateToken(tok); err != nil {
			log.Println("❌ deactivating dead device token failed:", err)
		}
	}
}

// ===========================
// 📬 Inbox operations
// ===========================

func (s *service) List(userID uint, unreadOnly bool, limit, offset int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(userID, unreadOnly, limit, offset)
}

func (s *service) MarkRead(userID, notificationID uint) error {
	return s.repo.MarkRead(userID, notificationID)
}

func (s *service) MarkAllRead(userID uint) error {
	return s.repo.MarkAllRead(userID)
}

func (s *service) UnreadCount(userID uint) (int64, error) {
	return s.repo.UnreadCount(userID)
}

func (s *service) RegisterDeviceToken(userID uint, token, deviceType, deviceName string) error {
	if token == "" {
		return errors.New("device token required")
	}
	return s.repo.UpsertDeviceToken(&FCMDeviceToken{
		UserID:      userID,
		DeviceToken: token,
		DeviceType:  deviceType,
		DeviceName:  deviceName,
	})
}
