package attendance

import "errors"

// Rejection reasons returned by the eligibility evaluator, the
// credential resolvers and the marker. Handlers map these to HTTP codes
// and messages; the services themselves only ever return the sentinel.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrNotRegistered      = errors.New("student not registered for this event")
	ErrAlreadyMarked      = errors.New("attendance already marked")
	ErrEventNotActive     = errors.New("event not active for attendance")
	ErrStudentRoleInvalid = errors.New("attendance can only be marked for students")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidMethod      = errors.New("invalid attendance method")
)
