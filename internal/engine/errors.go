package engine

import "errors"

// Engine operations fail without partial mutation; these sentinels are the
// whole failure taxonomy the presentation layer needs to distinguish.
var (
	// ErrInvalidArgument reports malformed input to a mutator (bad option
	// index, bad duration). Programmer error on the caller's side.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoActiveSession reports an operation that requires a started,
	// not-yet-finished session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrAlreadySubmitted reports a duplicate submission attempt, or any
	// mutator called after finalization.
	ErrAlreadySubmitted = errors.New("session already submitted")

	// ErrSessionActive reports StartSession while an unfinished session
	// exists.
	ErrSessionActive = errors.New("a session is already active")

	// ErrNoResults reports a results read before submission.
	ErrNoResults = errors.New("results not available")
)
