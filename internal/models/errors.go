package models

import "errors"

// Domain error taxonomy. Services wrap these with context; the HTTP
// error middleware maps them onto status codes.
var (
	// ErrNotFound is returned for unknown entity ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a lifecycle operation is
	// attempted on a terminal task. The task is left unchanged; repeat
	// completions are rejected, never silently accepted.
	ErrInvalidTransition = errors.New("invalid task transition")

	// ErrValidation is returned for malformed operation input, such as
	// an unknown status or period value.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateOpenTask is returned by the task store when an insert
	// would violate the one-open-task-per-(customer, type) invariant.
	// The generation engine treats it as "skip", not as a failure.
	ErrDuplicateOpenTask = errors.New("open task already exists")
)
