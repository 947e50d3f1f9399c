package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrApprovalPending  ErrCode = "APPROVAL_PENDING"

	// ─── Tenancy ───────────────────────────────────────────────────────
	ErrUnknownInstitute  ErrCode = "UNKNOWN_INSTITUTE"
	ErrInstituteInactive ErrCode = "INSTITUTE_INACTIVE"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Live quiz ─────────────────────────────────────────────────────
	ErrQuizNotRunning   ErrCode = "QUIZ_NOT_RUNNING"
	ErrQuizAlreadyLive  ErrCode = "QUIZ_ALREADY_LIVE"
	ErrQuizEnded        ErrCode = "QUIZ_ENDED"
	ErrNotQuizOwner     ErrCode = "NOT_QUIZ_OWNER"
	ErrNotParticipant   ErrCode = "NOT_PARTICIPANT"
	ErrAlreadyAnswered  ErrCode = "ALREADY_ANSWERED"
	ErrQuestionInactive ErrCode = "QUESTION_INACTIVE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrApprovalPending:
		return "Your registration is awaiting approval by an administrator."

	// ─── Tenancy ───────────────────────────────────────────────────────
	case ErrUnknownInstitute:
		return "No institute is registered for this address."
	case ErrInstituteInactive:
		return "This institute is currently disabled."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Live quiz ─────────────────────────────────────────────────────
	case ErrQuizNotRunning:
		return "This quiz is not currently running."
	case ErrQuizAlreadyLive:
		return "Another host has already started this quiz."
	case ErrQuizEnded:
		return "This quiz has already ended."
	case ErrNotQuizOwner:
		return "Only the host who started this quiz can control it."
	case ErrNotParticipant:
		return "You are not registered for this quiz."
	case ErrAlreadyAnswered:
		return "You have already answered this question."
	case ErrQuestionInactive:
		return "This question is no longer accepting answers."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
