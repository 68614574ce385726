package attendance

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/registration"
	"github.com/arvindh25/college-event-backend/utils"
)

// The attendance tests run against in-memory SQLite with TranslateError
// on, so unique-constraint races surface as gorm.ErrDuplicatedKey just
// like they do on Postgres.

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:attendance_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	// shared-cache sqlite needs a single connection to stay consistent
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&registration.Registration{},
		&AttendanceRecord{},
	); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// testClock is the frozen wall clock shared by the fixtures: the test
// event runs 10:00-12:00 UTC on this day and "now" sits at 10:30.
var (
	testDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)
)

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc := NewService(NewRepository(db), nil, nil, nil)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func seedUser(t *testing.T, db *gorm.DB, role auth.Role, username string) *auth.User {
	t.Helper()

	u := &auth.User{
		Username:     username,
		Email:        username + "@college.edu",
		PasswordHash: "x",
		FullName:     username,
		Role:         role,
	}
	if role == auth.RoleStudent {
		sid := "CS" + username
		u.StudentID = &sid
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return u
}

func seedOngoingEvent(t *testing.T, db *gorm.DB, organizerID uint) *event.Event {
	t.Helper()

	e := &event.Event{
		EventID:         utils.NewRefID("EV"),
		Title:           "Tech Symposium",
		Description:     "annual tech fest",
		Category:        event.CategoryTechnical,
		Venue:           "Main Auditorium",
		Date:            testDay,
		StartTime:       time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:         time.Date(0, 1, 1, 12, 0, 0, 0, time.UTC),
		OrganizerID:     organizerID,
		MaxParticipants: 100,
		Status:          event.StatusOngoing,
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("seeding event: %v", err)
	}
	return e
}

func seedRegistration(t *testing.T, db *gorm.DB, e *event.Event, student *auth.User) *registration.Registration {
	t.Helper()

	reg := &registration.Registration{
		RegistrationID: utils.NewRefID("REG"),
		EventID:        e.ID,
		StudentID:      student.ID,
	}
	if err := db.Create(reg).Error; err != nil {
		t.Fatalf("seeding registration: %v", err)
	}
	return reg
}
