package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden            ErrCode = "FORBIDDEN"
	ErrPermissionDenied     ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly    ErrCode = "STUDENT_ACCESS_ONLY"
	ErrNotOfferingProfessor ErrCode = "NOT_OFFERING_PROFESSOR"
	ErrNotEnrolledInCourse  ErrCode = "NOT_ENROLLED_IN_OFFERING"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuery   ErrCode = "INVALID_QUERY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Registration ──────────────────────────────────────────────────
	ErrOfferingNotFound    ErrCode = "OFFERING_NOT_FOUND"
	ErrRegistrationDenied  ErrCode = "REGISTRATION_DENIED"
	ErrAlreadyEnrolled     ErrCode = "ALREADY_ENROLLED"
	ErrEnrollmentNotActive ErrCode = "ENROLLMENT_NOT_ACTIVE"
	ErrSelfPrerequisite    ErrCode = "SELF_PREREQUISITE"
	ErrPrerequisiteCycle   ErrCode = "PREREQUISITE_CYCLE"
	ErrInvalidProfessor    ErrCode = "INVALID_PROFESSOR"
	ErrInvalidSchedule     ErrCode = "INVALID_SCHEDULE"
	ErrStudentNotFound     ErrCode = "STUDENT_NOT_FOUND"
	ErrNotStudent          ErrCode = "NOT_A_STUDENT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrNotOfferingProfessor:
		return "You do not teach this course offering."
	case ErrNotEnrolledInCourse:
		return "You are not enrolled in this course offering."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidQuery:
		return "Invalid query parameters."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "The record is still referenced by other data."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Registration ──────────────────────────────────────────────────
	case ErrOfferingNotFound:
		return "Course offering not found."
	case ErrRegistrationDenied:
		return "Registration was not permitted."
	case ErrAlreadyEnrolled:
		return "You are already enrolled in this course offering."
	case ErrEnrollmentNotActive:
		return "The enrollment is already completed or dropped."
	case ErrSelfPrerequisite:
		return "A course cannot be its own prerequisite."
	case ErrPrerequisiteCycle:
		return "The prerequisite would create a cycle."
	case ErrInvalidProfessor:
		return "The assigned user is not a professor."
	case ErrInvalidSchedule:
		return "Each schedule slot needs a weekday and a start time before its end time."
	case ErrStudentNotFound:
		return "Student not found."
	case ErrNotStudent:
		return "Only students can be registered for courses."

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
