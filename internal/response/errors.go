package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidID      ErrCode = "INVALID_ID"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrInvalidArgument  ErrCode = "INVALID_ARGUMENT"
	ErrNoActiveSession  ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionActive    ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrResultsNotReady  ErrCode = "RESULTS_NOT_READY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrSetNotFound ErrCode = "QUESTION_SET_NOT_FOUND"

	// ─── Persistence ───────────────────────────────────────────────────
	ErrPersistence ErrCode = "PERSISTENCE_FAILURE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidArgument:
		return "The request carries an out-of-range value."
	case ErrNoActiveSession:
		return "No exam session is currently active."
	case ErrSessionActive:
		return "An exam session is already in progress."
	case ErrAlreadySubmitted:
		return "This session has already been submitted."
	case ErrResultsNotReady:
		return "Results are not available until the session is submitted."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrSetNotFound:
		return "The requested question set was not found."
	case ErrPersistence:
		return "Progress could not be saved; the session remains usable."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
