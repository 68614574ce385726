package attendance

import (
	"context"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/registration"
)

// CheckEligibility decides whether attendance may currently be marked
// for (event, student). Rules run in order and short-circuit on the
// first failure:
//
//  1. event must exist
//  2. the target must hold the student role
//  3. the event must be inside its attendance window
//  4. a registration for the pair must exist
//  5. no attendance record may exist yet
//
// On success the matching registration is returned so the marker does
// not have to look it up again.
func (s *Service) CheckEligibility(ctx context.Context, e *event.Event, student *auth.User) (*registration.Registration, error) {
	if e == nil {
		return nil, ErrEventNotFound
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	if student.Role != auth.RoleStudent {
		return nil, ErrStudentRoleInvalid
	}
	if !e.ActiveForAttendance(s.Now()) {
		return nil, ErrEventNotActive
	}

	reg, err := s.Repo.FindRegistration(ctx, e.ID, student.ID)
	if err != nil {
		return nil, err
	}

	exists, err := s.Repo.HasRecord(ctx, e.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyMarked
	}

	return reg, nil
}
