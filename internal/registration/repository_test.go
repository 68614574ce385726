package registration

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/utils"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:registration_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&auth.User{}, &event.Event{}, &Registration{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	// the attendance package owns this table but cannot be imported here,
	// so the delete-guard tests create the columns they query directly
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS attendance_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		registration_id INTEGER NOT NULL
	)`).Error; err != nil {
		t.Fatalf("creating attendance_records table: %v", err)
	}
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, username string) *auth.User {
	t.Helper()
	sid := "CS" + username
	u := &auth.User{
		Username:     username,
		Email:        username + "@college.edu",
		PasswordHash: "x",
		FullName:     username,
		Role:         auth.RoleStudent,
		StudentID:    &sid,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seeding student: %v", err)
	}
	return u
}

func seedEvent(t *testing.T, db *gorm.DB, maxParticipants int) *event.Event {
	t.Helper()
	e := &event.Event{
		EventID:         utils.NewRefID("EV"),
		Title:           "Seminar",
		Description:     "guest lecture",
		Category:        event.CategorySeminar,
		Venue:           "Hall B",
		Date:            time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:         time.Date(0, 1, 1, 12, 0, 0, 0, time.UTC),
		OrganizerID:     1,
		MaxParticipants: maxParticipants,
		Status:          event.StatusUpcoming,
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("seeding event: %v", err)
	}
	return e
}

func TestCreateWithOccupancyIncrementsCounter(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	e := seedEvent(t, db, 2)
	student := seedStudent(t, db, "stu1")

	reg := &Registration{
		RegistrationID: utils.NewRefID("REG"),
		EventID:        e.ID,
		StudentID:      student.ID,
	}
	if err := repo.CreateWithOccupancy(context.Background(), reg); err != nil {
		t.Fatalf("CreateWithOccupancy: %v", err)
	}

	var reloaded event.Event
	if err := db.First(&reloaded, e.ID).Error; err != nil {
		t.Fatalf("reloading event: %v", err)
	}
	if reloaded.CurrentParticipants != 1 {
		t.Errorf("current_participants = %d, want 1", reloaded.CurrentParticipants)
	}
}

func TestCreateWithOccupancyRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	e := seedEvent(t, db, 10)
	student := seedStudent(t, db, "stu1")

	first := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: student.ID}
	if err := repo.CreateWithOccupancy(context.Background(), first); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	dup := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: student.ID}
	if err := repo.CreateWithOccupancy(context.Background(), dup); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("duplicate: got err %v, want ErrAlreadyRegistered", err)
	}

	// the failed attempt must not leak into the occupancy counter
	var reloaded event.Event
	if err := db.First(&reloaded, e.ID).Error; err != nil {
		t.Fatalf("reloading event: %v", err)
	}
	if reloaded.CurrentParticipants != 1 {
		t.Errorf("current_participants = %d, want 1 after rollback", reloaded.CurrentParticipants)
	}
}

func TestCreateWithOccupancyEnforcesCapacity(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	e := seedEvent(t, db, 2)
	for i := 0; i < 2; i++ {
		s := seedStudent(t, db, fmt.Sprintf("stu%d", i))
		reg := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: s.ID}
		if err := repo.CreateWithOccupancy(context.Background(), reg); err != nil {
			t.Fatalf("registration %d: %v", i, err)
		}
	}

	late := seedStudent(t, db, "latecomer")
	reg := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: late.ID}
	if err := repo.CreateWithOccupancy(context.Background(), reg); !errors.Is(err, ErrEventFull) {
		t.Fatalf("got err %v, want ErrEventFull", err)
	}
}

func TestDeleteWithOccupancyReleasesSlot(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	e := seedEvent(t, db, 1)
	student := seedStudent(t, db, "stu1")

	reg := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: student.ID}
	if err := repo.CreateWithOccupancy(context.Background(), reg); err != nil {
		t.Fatalf("CreateWithOccupancy: %v", err)
	}

	if err := repo.DeleteWithOccupancy(context.Background(), reg); err != nil {
		t.Fatalf("DeleteWithOccupancy: %v", err)
	}

	var reloaded event.Event
	if err := db.First(&reloaded, e.ID).Error; err != nil {
		t.Fatalf("reloading event: %v", err)
	}
	if reloaded.CurrentParticipants != 0 {
		t.Errorf("current_participants = %d, want 0", reloaded.CurrentParticipants)
	}

	// the slot is reusable
	other := seedStudent(t, db, "stu2")
	next := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: other.ID}
	if err := repo.CreateWithOccupancy(context.Background(), next); err != nil {
		t.Fatalf("re-registering freed slot: %v", err)
	}
}

func TestDeleteWithOccupancyBlockedByAttendance(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	e := seedEvent(t, db, 5)
	student := seedStudent(t, db, "stu1")

	reg := &Registration{RegistrationID: utils.NewRefID("REG"), EventID: e.ID, StudentID: student.ID}
	if err := repo.CreateWithOccupancy(context.Background(), reg); err != nil {
		t.Fatalf("CreateWithOccupancy: %v", err)
	}

	if err := db.Exec("INSERT INTO attendance_records (registration_id) VALUES (?)", reg.ID).Error; err != nil {
		t.Fatalf("inserting attendance record: %v", err)
	}

	if err := repo.DeleteWithOccupancy(context.Background(), reg); !errors.Is(err, ErrAttendanceRecorded) {
		t.Fatalf("got err %v, want ErrAttendanceRecorded", err)
	}

	// nothing changed: the registration and its slot are still held
	var reloaded event.Event
	if err := db.First(&reloaded, e.ID).Error; err != nil {
		t.Fatalf("reloading event: %v", err)
	}
	if reloaded.CurrentParticipants != 1 {
		t.Errorf("current_participants = %d, want 1", reloaded.CurrentParticipants)
	}
	if _, err := repo.GetByRef(context.Background(), reg.RegistrationID); err != nil {
		t.Errorf("registration should survive the rejected delete: %v", err)
	}

	// clearing the record unblocks the cancel
	if err := db.Exec("DELETE FROM attendance_records WHERE registration_id = ?", reg.ID).Error; err != nil {
		t.Fatalf("clearing attendance record: %v", err)
	}
	if err := repo.DeleteWithOccupancy(context.Background(), reg); err != nil {
		t.Fatalf("DeleteWithOccupancy after clearing record: %v", err)
	}
}
