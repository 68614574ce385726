package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arvindh25/college-event-backend/internal/registration"
)

func TestMarkQRCreatesRecordAndFlipsRegistration(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	seedRegistration(t, db, e, student)

	rec, err := svc.MarkQR(context.Background(), QRMarkRequest{
		QRData:     e.EventID,
		DeviceInfo: "test-device",
	}, student, "10.0.0.1")
	if err != nil {
		t.Fatalf("MarkQR: %v", err)
	}

	if rec.Method != MethodQR {
		t.Errorf("method = %s, want qr", rec.Method)
	}
	if rec.MarkedByID != nil {
		t.Errorf("self-scan must not set marked_by, got %d", *rec.MarkedByID)
	}
	if !rec.MarkedAt.Equal(testNow) {
		t.Errorf("marked_at = %v, want %v", rec.MarkedAt, testNow)
	}

	var reg registration.Registration
	if err := db.Where("event_id = ? AND student_id = ?", e.ID, student.ID).First(&reg).Error; err != nil {
		t.Fatalf("reloading registration: %v", err)
	}
	if !reg.Attended {
		t.Error("registration.attended not flipped in the same transaction")
	}
	if reg.AttendanceTime == nil || !reg.AttendanceTime.Equal(rec.MarkedAt) {
		t.Errorf("registration.attendance_time = %v, want %v", reg.AttendanceTime, rec.MarkedAt)
	}
}

func TestMarkSecondAttemptRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	seedRegistration(t, db, e, student)

	if _, err := svc.MarkQR(context.Background(), QRMarkRequest{QRData: e.EventID}, student, ""); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if _, err := svc.MarkQR(context.Background(), QRMarkRequest{QRData: e.EventID}, student, ""); !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("second mark: got err %v, want ErrAlreadyMarked", err)
	}

	var count int64
	db.Model(&AttendanceRecord{}).Where("event_id = ? AND student_id = ?", e.ID, student.ID).Count(&count)
	if count != 1 {
		t.Errorf("record count = %d, want exactly 1", count)
	}
}

// Simultaneous marking for the same (event, student) must produce
// exactly one record; every loser sees ErrAlreadyMarked.
func TestMarkConcurrentExactlyOneSucceeds(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	reg := seedRegistration(t, db, e, student)

	const workers = 16
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Mark(context.Background(), MarkInput{
				Event:        e,
				Student:      student,
				Registration: reg,
				Method:       MethodQR,
			})
		}(i)
	}
	wg.Wait()

	success := 0
	for i, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrAlreadyMarked):
		default:
			t.Errorf("worker %d: unexpected error %v", i, err)
		}
	}
	if success != 1 {
		t.Errorf("successful marks = %d, want exactly 1", success)
	}

	var count int64
	db.Model(&AttendanceRecord{}).Where("event_id = ? AND student_id = ?", e.ID, student.ID).Count(&count)
	if count != 1 {
		t.Errorf("record count = %d, want exactly 1", count)
	}
}

func TestMarkManualByAdminSetsOperator(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	admin := seedUser(t, db, "admin", "adm1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	seedRegistration(t, db, e, student)

	rec, err := svc.MarkManual(context.Background(), ManualMarkRequest{
		EventCode: e.EventID,
		StudentID: student.Username,
	}, admin, "10.0.0.2")
	if err != nil {
		t.Fatalf("MarkManual: %v", err)
	}

	if rec.Method != MethodManual {
		t.Errorf("method = %s, want manual", rec.Method)
	}
	if rec.StudentID != student.ID {
		t.Errorf("record student = %d, want %d", rec.StudentID, student.ID)
	}
	if rec.MarkedByID == nil || *rec.MarkedByID != admin.ID {
		t.Errorf("marked_by = %v, want admin %d", rec.MarkedByID, admin.ID)
	}
}

func TestMarkRejectsInvalidMethod(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	reg := seedRegistration(t, db, e, student)

	_, err := svc.Mark(context.Background(), MarkInput{
		Event: e, Student: student, Registration: reg, Method: "telepathy",
	})
	if !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("got err %v, want ErrInvalidMethod", err)
	}
}

func TestDeleteResetsRegistration(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	admin := seedUser(t, db, "admin", "adm1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	seedRegistration(t, db, e, student)

	rec, err := svc.MarkQR(context.Background(), QRMarkRequest{QRData: e.EventID}, student, "")
	if err != nil {
		t.Fatalf("MarkQR: %v", err)
	}

	if err := svc.Delete(context.Background(), rec.AttendanceID, admin, ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var reg registration.Registration
	if err := db.Where("event_id = ? AND student_id = ?", e.ID, student.ID).First(&reg).Error; err != nil {
		t.Fatalf("reloading registration: %v", err)
	}
	if reg.Attended {
		t.Error("registration.attended not reset after delete")
	}
	if reg.AttendanceTime != nil {
		t.Errorf("registration.attendance_time = %v, want nil", reg.AttendanceTime)
	}

	// the pair is markable again
	if _, err := svc.MarkQR(context.Background(), QRMarkRequest{QRData: e.EventID}, student, ""); err != nil {
		t.Fatalf("re-mark after delete: %v", err)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	seedRegistration(t, db, e, student)

	rec, err := svc.MarkQR(context.Background(), QRMarkRequest{QRData: e.EventID}, student, "")
	if err != nil {
		t.Fatalf("MarkQR: %v", err)
	}

	if err := svc.Delete(context.Background(), rec.AttendanceID, organizer, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("organizer delete: got err %v, want ErrPermissionDenied", err)
	}
	if err := svc.Delete(context.Background(), rec.AttendanceID, student, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("student delete: got err %v, want ErrPermissionDenied", err)
	}
}

func TestSetVerifiedOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	stranger := seedUser(t, db, "organizer", "org2")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)
	seedRegistration(t, db, e, student)

	rec, err := svc.MarkQR(context.Background(), QRMarkRequest{QRData: e.EventID}, student, "")
	if err != nil {
		t.Fatalf("MarkQR: %v", err)
	}

	got, err := svc.SetVerified(context.Background(), rec.AttendanceID, false, organizer, "")
	if err != nil {
		t.Fatalf("SetVerified by organizer: %v", err)
	}
	if got.Verified {
		t.Error("verified flag not cleared")
	}

	if _, err := svc.SetVerified(context.Background(), rec.AttendanceID, true, stranger, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("foreign organizer: got err %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.SetVerified(context.Background(), rec.AttendanceID, true, student, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("student: got err %v, want ErrPermissionDenied", err)
	}
}
