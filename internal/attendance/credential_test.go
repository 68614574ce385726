package attendance

import (
	"context"
	"errors"
	"testing"
)

func TestResolveQRCredentialBareRef(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)

	gotEvent, gotStudent, err := svc.ResolveQRCredential(context.Background(), e.EventID, student)
	if err != nil {
		t.Fatalf("ResolveQRCredential: %v", err)
	}
	if gotEvent.ID != e.ID {
		t.Errorf("resolved event %d, want %d", gotEvent.ID, e.ID)
	}
	if gotStudent.ID != student.ID {
		t.Errorf("resolved student %d, want caller %d", gotStudent.ID, student.ID)
	}
}

func TestResolveQRCredentialCompositeSecret(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)

	if err := db.Model(e).Update("qr_secret", "s3cret").Error; err != nil {
		t.Fatalf("setting secret: %v", err)
	}

	if _, _, err := svc.ResolveQRCredential(context.Background(), e.EventID+"|s3cret", student); err != nil {
		t.Errorf("valid secret rejected: %v", err)
	}
	if _, _, err := svc.ResolveQRCredential(context.Background(), e.EventID+"|wrong", student); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("wrong secret: got err %v, want ErrInvalidCredential", err)
	}
	if _, _, err := svc.ResolveQRCredential(context.Background(), e.EventID+"|", student); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("empty secret: got err %v, want ErrInvalidCredential", err)
	}
}

func TestResolveQRCredentialCompositeWithoutStoredSecret(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)

	// no qr_secret generated yet: any composite payload must fail
	if _, _, err := svc.ResolveQRCredential(context.Background(), e.EventID+"|anything", student); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("got err %v, want ErrInvalidCredential", err)
	}
}

func TestResolveQRCredentialBadInputs(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	student := seedUser(t, db, "student", "stu1")

	if _, _, err := svc.ResolveQRCredential(context.Background(), "", student); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("empty payload: got err %v, want ErrInvalidCredential", err)
	}
	if _, _, err := svc.ResolveQRCredential(context.Background(), "EVNOPE1234", student); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown ref: got err %v, want ErrEventNotFound", err)
	}
}

func TestResolveManualCredentialAdminTargetsStudent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	admin := seedUser(t, db, "admin", "adm1")
	student := seedUser(t, db, "student", "stu1")
	e := seedOngoingEvent(t, db, organizer.ID)

	// by college student id
	_, got, err := svc.ResolveManualCredential(context.Background(), e.EventID, *student.StudentID, admin)
	if err != nil {
		t.Fatalf("lookup by student id: %v", err)
	}
	if got.ID != student.ID {
		t.Errorf("resolved student %d, want %d", got.ID, student.ID)
	}

	// by username
	_, got, err = svc.ResolveManualCredential(context.Background(), e.EventID, student.Username, admin)
	if err != nil {
		t.Fatalf("lookup by username: %v", err)
	}
	if got.ID != student.ID {
		t.Errorf("resolved student %d, want %d", got.ID, student.ID)
	}
}

func TestResolveManualCredentialNonAdminForcedToSelf(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	student := seedUser(t, db, "student", "stu1")
	other := seedUser(t, db, "student", "stu2")
	e := seedOngoingEvent(t, db, organizer.ID)

	// a student naming another student still resolves to themselves
	_, got, err := svc.ResolveManualCredential(context.Background(), e.EventID, other.Username, student)
	if err != nil {
		t.Fatalf("ResolveManualCredential: %v", err)
	}
	if got.ID != student.ID {
		t.Errorf("resolved student %d, want operator %d", got.ID, student.ID)
	}

	// same for organizers, who can manage events but not mark others
	_, got, err = svc.ResolveManualCredential(context.Background(), e.EventID, other.Username, organizer)
	if err != nil {
		t.Fatalf("ResolveManualCredential: %v", err)
	}
	if got.ID != organizer.ID {
		t.Errorf("resolved student %d, want operator %d", got.ID, organizer.ID)
	}
}

func TestResolveManualCredentialLookupMiss(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	organizer := seedUser(t, db, "organizer", "org1")
	admin := seedUser(t, db, "admin", "adm1")
	e := seedOngoingEvent(t, db, organizer.ID)

	if _, _, err := svc.ResolveManualCredential(context.Background(), e.EventID, "ghost", admin); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("got err %v, want ErrStudentNotFound", err)
	}

	// an organizer's username never resolves as a student target
	if _, _, err := svc.ResolveManualCredential(context.Background(), e.EventID, organizer.Username, admin); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("organizer as target: got err %v, want ErrStudentNotFound", err)
	}
}
