package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuery   ErrCode = "INVALID_QUERY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrInvalidReference ErrCode = "INVALID_REFERENCE"

	// ─── Intakes & enrollments ─────────────────────────────────────────
	ErrIntakeFull              ErrCode = "INTAKE_FULL"
	ErrIntakeClosed            ErrCode = "INTAKE_CLOSED"
	ErrInvalidIntakeDates      ErrCode = "INVALID_INTAKE_DATES"
	ErrCapacityBelowRegistered ErrCode = "CAPACITY_BELOW_REGISTERED"
	ErrAlreadyEnrolled         ErrCode = "ALREADY_ENROLLED"
	ErrInvalidTransition       ErrCode = "INVALID_TRANSITION"
	ErrPaymentLocked           ErrCode = "PAYMENT_LOCKED"
	ErrPaymentNotPaid          ErrCode = "PAYMENT_NOT_PAID"
	ErrRefundExceedsPayment    ErrCode = "REFUND_EXCEEDS_PAYMENT"
	ErrInvalidRefundTransition ErrCode = "INVALID_REFUND_TRANSITION"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

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
		return "Incorrect email or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrTokenRevoked:
		return "You have been signed out. Please sign in again."
	case ErrEmailTaken:
		return "An account with this email already exists."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrActionForbidden:
		return "You cannot perform this action on your own account."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidQuery:
		return "Invalid sort or filter parameter."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "This record cannot be deleted because other records still reference it."
	case ErrInvalidReference:
		return "A referenced record does not exist."

	// ─── Intakes & enrollments ─────────────────────────────────────────
	case ErrIntakeFull:
		return "This intake is full."
	case ErrIntakeClosed:
		return "Registration for this intake is closed."
	case ErrInvalidIntakeDates:
		return "Intake dates or registration window are inconsistent."
	case ErrCapacityBelowRegistered:
		return "Capacity cannot be lower than the number of enrolled students."
	case ErrAlreadyEnrolled:
		return "You already have an enrollment for this intake."
	case ErrInvalidTransition:
		return "This status change is not allowed."
	case ErrPaymentLocked:
		return "This payment has already been settled."
	case ErrPaymentNotPaid:
		return "Refunds can only be issued against paid payments."
	case ErrRefundExceedsPayment:
		return "The refund exceeds the refundable amount."
	case ErrInvalidRefundTransition:
		return "This refund status change is not allowed."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
