package auth

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arvindh25/college-event-backend/config"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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

	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

func newTestService(t *testing.T) Service {
	t.Helper()

	cfg := &config.Config{
		JWTAccessSecret:    "access-secret",
		JWTRefreshSecret:   "refresh-secret",
		JWTAccessTTLHours:  1,
		JWTRefreshTTLHours: 24,
	}
	return NewService(NewRepository(newTestDB(t)), cfg)
}

func studentRequest(username string) RegisterRequest {
	return RegisterRequest{
		Username:  username,
		Email:     username + "@college.edu",
		Password:  "correct-horse",
		FullName:  "Test Student",
		Role:      "student",
		StudentID: "CS" + username,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(studentRequest("asha"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != RoleStudent {
		t.Errorf("role = %s, want student", user.Role)
	}
	if user.StudentID == nil || *user.StudentID != "CSasha" {
		t.Errorf("student_id = %v", user.StudentID)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	pair, got, err := svc.Login(LoginRequest{Username: "asha", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login returned user %d, want %d", got.ID, user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("empty token pair")
	}

	if _, _, err := svc.Login(LoginRequest{Username: "asha", Password: "wrong"}); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	admin := studentRequest("sneaky")
	admin.Role = "admin"
	if _, err := svc.Register(admin); err == nil {
		t.Error("self-registration as admin accepted")
	}

	noSID := studentRequest("nosid")
	noSID.StudentID = ""
	if _, err := svc.Register(noSID); err == nil {
		t.Error("student without student_id accepted")
	}

	organizer := RegisterRequest{
		Username: "orga", Email: "orga@college.edu", Password: "correct-horse",
		FullName: "Org", Role: "organizer",
	}
	if _, err := svc.Register(organizer); err != nil {
		t.Errorf("organizer without student_id rejected: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register(studentRequest("asha")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := studentRequest("asha")
	dup.Email = "other@college.edu"
	dup.StudentID = "CSother"
	if _, err := svc.Register(dup); err == nil {
		t.Error("duplicate username accepted")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register(studentRequest("asha")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := studentRequest("bala")
	dup.Email = "ASHA@college.edu" // normalized to the same address
	if _, err := svc.Register(dup); err == nil {
		t.Error("duplicate email accepted")
	}
}

func TestRefreshRejectsForeignSigningMethod(t *testing.T) {
	svc := newTestService(t)

	claims := jwt.MapClaims{
		"user_id": float64(1),
		"typ":     "refresh",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("building unsigned token: %v", err)
	}

	if _, err := svc.Refresh(unsigned); err == nil {
		t.Error("token without HMAC signature accepted on refresh")
	}
}

func TestSeedAdminUser(t *testing.T) {
	db := newTestDB(t)

	if err := SeedAdminUser(db); err != nil {
		t.Fatalf("SeedAdminUser: %v", err)
	}

	var count int64
	if err := db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		t.Fatalf("counting admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("admin count = %d, want 1", count)
	}

	// idempotent: a second run must not create another admin
	if err := SeedAdminUser(db); err != nil {
		t.Fatalf("second SeedAdminUser: %v", err)
	}
	if err := db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		t.Fatalf("recounting admins: %v", err)
	}
	if count != 1 {
		t.Errorf("admin count after reseed = %d, want 1", count)
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register(studentRequest("asha")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, _, err := svc.Login(LoginRequest{Username: "asha", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	access, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if access == "" {
		t.Error("empty access token from refresh")
	}

	// an access token must not pass as a refresh token
	if _, err := svc.Refresh(pair.AccessToken); err == nil {
		t.Error("access token accepted on the refresh path")
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !RoleAdmin.CanMarkOthers() {
		t.Error("admin cannot mark others")
	}
	if RoleOrganizer.CanMarkOthers() || RoleStudent.CanMarkOthers() {
		t.Error("non-admin role can mark others")
	}
	if !RoleAdmin.CanManageEvents() || !RoleOrganizer.CanManageEvents() {
		t.Error("managing role cannot manage events")
	}
	if RoleStudent.CanManageEvents() {
		t.Error("student can manage events")
	}
	if Role("superuser").Valid() {
		t.Error("unknown role valid")
	}
}
