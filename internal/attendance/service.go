package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/arvindh25/college-event-backend/internal/auditlog"
	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/notification"
	"github.com/arvindh25/college-event-backend/internal/registration"
	"github.com/arvindh25/college-event-backend/utils"
)

// Service is the attendance engine: credential resolution, eligibility,
// the atomic marker and the statistics aggregator.
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
	NotifSvc notification.Service
	Cache    *redis.Client

	// Now is the wall clock for the eligibility window; swapped out in
	// tests.
	Now func() time.Time
}

func NewService(repo *Repository, auditSvc auditlog.Service, notifSvc notification.Service, cache *redis.Client) *Service {
	return &Service{
		Repo:     repo,
		AuditSvc: auditSvc,
		NotifSvc: notifSvc,
		Cache:    cache,
		Now:      time.Now,
	}
}

// MarkInput carries everything the marker needs for one attempt.
// Operator is non-nil only on the admin-assisted manual path.
type MarkInput struct {
	Event        *event.Event
	Student      *auth.User
	Registration *registration.Registration
	Method       string
	DeviceInfo   string
	Latitude     *float64
	Longitude    *float64
	Operator     *auth.User
	IP           string
}

// ===========================
// 🎯 Full QR flow: resolve → eligibility → mark
func (s *Service) MarkQR(ctx context.Context, req QRMarkRequest, caller *auth.User, ip string) (*AttendanceRecord, error) {
	e, student, err := s.ResolveQRCredential(ctx, req.QRData, caller)
	if err != nil {
		return nil, err
	}

	reg, err := s.CheckEligibility(ctx, e, student)
	if err != nil {
		return nil, err
	}

	return s.Mark(ctx, MarkInput{
		Event:        e,
		Student:      student,
		Registration: reg,
		Method:       MethodQR,
		DeviceInfo:   req.DeviceInfo,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IP:           ip,
	})
}

// ===========================
// 🎯 Full manual flow: resolve → eligibility → mark
func (s *Service) MarkManual(ctx context.Context, req ManualMarkRequest, operator *auth.User, ip string) (*AttendanceRecord, error) {
	e, student, err := s.ResolveManualCredential(ctx, req.EventCode, req.StudentID, operator)
	if err != nil {
		return nil, err
	}

	reg, err := s.CheckEligibility(ctx, e, student)
	if err != nil {
		return nil, err
	}

	in := MarkInput{
		Event:        e,
		Student:      student,
		Registration: reg,
		Method:       MethodManual,
		DeviceInfo:   req.DeviceInfo,
		IP:           ip,
	}
	if operator.ID != student.ID {
		in.Operator = operator
	}

	return s.Mark(ctx, in)
}

// ===========================
// 🎯 Mark creates the attendance record and flips the registration in
// one transaction.
//
// Concurrency: when two requests race for the same (event, student) the
// unique index lets exactly one insert through. The loser's constraint
// violation is re-checked against the store and reported as
// ErrAlreadyMarked; only a conflict with no surviving record propagates
// as a real storage error.
func (s *Service) Mark(ctx context.Context, in MarkInput) (*AttendanceRecord, error) {
	if in.Event == nil || in.Student == nil || in.Registration == nil {
		return nil, ErrNotRegistered
	}
	if !ValidMethod(in.Method) {
		return nil, ErrInvalidMethod
	}

	rec := &AttendanceRecord{
		AttendanceID:   utils.NewRefID("ATT"),
		EventID:        in.Event.ID,
		StudentID:      in.Student.ID,
		RegistrationID: in.Registration.ID,
		Method:         in.Method,
		MarkedAt:       s.Now().UTC(),
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		DeviceInfo:     truncate(in.DeviceInfo, 200),
		Verified:       true,
	}
	if in.Operator != nil {
		rec.MarkedByID = &in.Operator.ID
	}

	if err := s.Repo.CreateWithRegistration(ctx, rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			exists, checkErr := s.Repo.HasRecord(ctx, in.Event.ID, in.Student.ID)
			if checkErr == nil && exists {
				return nil, ErrAlreadyMarked
			}
			return nil, err
		}
		s.logAction(in, rec, map[string]interface{}{"error": err.Error()}, "failure")
		return nil, err
	}

	// Post-commit side effects are best-effort: a failure here never
	// rolls back the mark.
	s.logAction(in, rec, nil, "success")
	s.invalidateStatsCache(ctx, in.Student.ID)
	s.notifyMarked(ctx, in, rec)

	return rec, nil
}

// ===========================
// ✅ Verify toggles the only mutable field on a record.
func (s *Service) SetVerified(ctx context.Context, ref string, verified bool, actor *auth.User, ip string) (*AttendanceRecord, error) {
	if !actor.Role.CanManageEvents() {
		return nil, ErrPermissionDenied
	}

	rec, err := s.Repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	if actor.Role == auth.RoleOrganizer && rec.Event.OrganizerID != actor.ID {
		return nil, ErrPermissionDenied
	}

	if err := s.Repo.SetVerified(ctx, rec.ID, verified); err != nil {
		return nil, err
	}
	rec.Verified = verified

	if s.AuditSvc != nil {
		_ = s.AuditSvc.LogAction(context.Background(), &actor.ID, &rec.EventID, "ATTENDANCE_VERIFIED",
			map[string]interface{}{
				"attendance_ref": rec.AttendanceID,
				"verified":       verified,
			}, ip, "success")
	}

	return rec, nil
}

// ===========================
// ❌ Delete removes a record and resets the registration's attended
// flag in the same transaction (admin only).
func (s *Service) Delete(ctx context.Context, ref string, actor *auth.User, ip string) error {
	if actor.Role != auth.RoleAdmin {
		return ErrPermissionDenied
	}

	rec, err := s.Repo.GetByRef(ctx, ref)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteWithRegistrationReset(ctx, rec); err != nil {
		return err
	}

	s.invalidateStatsCache(ctx, rec.StudentID)

	if s.AuditSvc != nil {
		_ = s.AuditSvc.LogAction(context.Background(), &actor.ID, &rec.EventID, "ATTENDANCE_DELETED",
			map[string]interface{}{
				"attendance_ref": rec.AttendanceID,
				"student_id":     rec.StudentID,
			}, ip, "success")
	}

	return nil
}

// ===========================
// 📄 Listings
func (s *Service) ListForStudent(ctx context.Context, studentID uint, limit int) ([]AttendanceRecord, error) {
	return s.Repo.ListByStudent(ctx, studentID, limit)
}

func (s *Service) ListForEvent(ctx context.Context, eventRef string, actor *auth.User) ([]AttendanceRecord, error) {
	if !actor.Role.CanManageEvents() {
		return nil, ErrPermissionDenied
	}

	e, err := s.Repo.FindEventByRef(ctx, eventRef)
	if err != nil {
		return nil, err
	}

	if actor.Role == auth.RoleOrganizer && e.OrganizerID != actor.ID {
		return nil, ErrPermissionDenied
	}

	return s.Repo.ListByEvent(ctx, e.ID)
}

// ===========================
// internal helpers

func (s *Service) logAction(in MarkInput, rec *AttendanceRecord, extra map[string]interface{}, status string) {
	if s.AuditSvc == nil {
		return
	}

	details := map[string]interface{}{
		"attendance_ref": rec.AttendanceID,
		"event_ref":      in.Event.EventID,
		"student_id":     in.Student.ID,
		"method":         in.Method,
	}
	if in.Operator != nil {
		details["operator_id"] = in.Operator.ID
	}
	for k, v := range extra {
		details[k] = v
	}

	actorID := in.Student.ID
	if in.Operator != nil {
		actorID = in.Operator.ID
	}
	_ = s.AuditSvc.LogAction(context.Background(), &actorID, &in.Event.ID, "ATTENDANCE_MARKED", details, in.IP, status)
}

func (s *Service) notifyMarked(ctx context.Context, in MarkInput, rec *AttendanceRecord) {
	if s.NotifSvc == nil {
		return
	}

	msg := notification.AttendanceMarkedMessage{
		StudentID:     in.Student.ID,
		StudentName:   in.Student.DisplayName(),
		StudentEmail:  in.Student.Email,
		EventID:       in.Event.ID,
		EventRef:      in.Event.EventID,
		EventTitle:    in.Event.Title,
		OrganizerID:   in.Event.OrganizerID,
		Method:        in.Method,
		MarkedAt:      rec.MarkedAt,
		AdminAssisted: in.Operator != nil,
	}
	if in.Operator != nil {
		msg.OperatorID = in.Operator.ID
		msg.OperatorName = in.Operator.DisplayName()
	}

	_ = s.NotifSvc.PublishAttendanceMarked(ctx, msg)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
