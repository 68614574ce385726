package attendance

import (
	"context"
	"strings"

	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
)

// ResolveQRCredential reduces a scanned QR payload to a validated
// (event, student) pair. Two encodings are accepted:
//
//   - bare event reference "EVXXXXXXXX": legacy self-scan QR; the
//     student identity comes from the authenticated caller, not the
//     payload
//   - composite "EVXXXXXXXX|<secret>": organizer display QR; the secret
//     must match the event's stored qr_secret exactly
//
// The resolver never marks anything; the caller still has to pass the
// pair through CheckEligibility.
func (s *Service) ResolveQRCredential(ctx context.Context, raw string, caller *auth.User) (*event.Event, *auth.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, ErrInvalidCredential
	}
	if caller == nil {
		return nil, nil, ErrStudentNotFound
	}

	ref := raw
	secret := ""
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		ref = raw[:i]
		secret = raw[i+1:]
	}

	e, err := s.Repo.FindEventByRef(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	if secret != "" || strings.ContainsRune(raw, '|') {
		if e.QRSecret == "" || secret != e.QRSecret {
			return nil, nil, ErrInvalidCredential
		}
	}

	return e, caller, nil
}

// ResolveManualCredential reduces an event code plus a student lookup
// key to a validated (event, student) pair. Admin operators may target
// any student; everyone else is forced to themselves regardless of the
// lookup key.
func (s *Service) ResolveManualCredential(ctx context.Context, eventCode, lookupKey string, operator *auth.User) (*event.Event, *auth.User, error) {
	if operator == nil {
		return nil, nil, ErrStudentNotFound
	}

	e, err := s.Repo.FindEventByRef(ctx, strings.TrimSpace(eventCode))
	if err != nil {
		return nil, nil, err
	}

	lookupKey = strings.TrimSpace(lookupKey)
	if operator.Role.CanMarkOthers() && lookupKey != "" {
		student, err := s.Repo.FindStudentByLookup(ctx, lookupKey)
		if err != nil {
			return nil, nil, err
		}
		return e, student, nil
	}

	return e, operator, nil
}
