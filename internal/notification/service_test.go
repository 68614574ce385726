package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:notification_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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

	if err := db.AutoMigrate(&Notification{}, &FCMDeviceToken{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// fakePush records what was sent and reports a configured set of tokens
// as dead, the way FCM reports unregistered devices.
type fakePush struct {
	sent [][]string
	dead []string
}

func (f *fakePush) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	f.sent = append(f.sent, tokens)
	return f.dead, nil
}

func markedPayload(t *testing.T, studentID uint) []byte {
	t.Helper()
	payload, err := json.Marshal(AttendanceMarkedMessage{
		StudentID:   studentID,
		StudentName: "Asha",
		EventID:     7,
		EventRef:    "EV4K7QZ2MD",
		EventTitle:  "Tech Symposium",
		Method:      "qr",
		MarkedAt:    time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshaling message: %v", err)
	}
	return payload
}

func TestHandleAttendanceMarkedDeactivatesDeadTokens(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	push := &fakePush{dead: []string{"tok-stale"}}
	svc := NewService(repo, push, nil)

	for _, tok := range []string{"tok-stale", "tok-live"} {
		if err := svc.RegisterDeviceToken(42, tok, "android", "pixel"); err != nil {
			t.Fatalf("registering token %s: %v", tok, err)
		}
	}

	if err := svc.HandleAttendanceMarked(context.Background(), markedPayload(t, 42)); err != nil {
		t.Fatalf("HandleAttendanceMarked: %v", err)
	}

	if len(push.sent) != 1 || len(push.sent[0]) != 2 {
		t.Fatalf("push sent = %v, want one batch of both tokens", push.sent)
	}

	// the in-app row lands regardless of push outcome
	unread, err := svc.UnreadCount(42)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread = %d, want 1", unread)
	}

	// the provider-reported dead token is retired, the live one kept
	tokens, err := repo.ActiveTokensForUser(42)
	if err != nil {
		t.Fatalf("ActiveTokensForUser: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "tok-live" {
		t.Errorf("active tokens = %v, want [tok-live]", tokens)
	}
}

func TestHandleAttendanceMarkedWithoutChannels(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil, nil)

	if err := svc.HandleAttendanceMarked(context.Background(), markedPayload(t, 7)); err != nil {
		t.Fatalf("HandleAttendanceMarked with nil channels: %v", err)
	}

	unread, err := svc.UnreadCount(7)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread = %d, want 1", unread)
	}
}
