package errors

import "net/http"

// Kind is a stable machine-readable error category. Clients key messaging and
// retry behavior off Kind, never off the human message.
type Kind string

const (
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindCategoryAccessDenied Kind = "CATEGORY_ACCESS_DENIED"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindTicketClosed         Kind = "TICKET_CLOSED"
	KindInvalidState         Kind = "INVALID_STATE"
	KindSelfFollow           Kind = "SELF_FOLLOW_NOT_ALLOWED"
	KindConflictingUpdate    Kind = "CONFLICTING_UPDATE"
	KindNotFound             Kind = "NOT_FOUND"
	KindValidation           Kind = "VALIDATION_FAILED"
	KindRateLimit            Kind = "RATE_LIMITED"
	KindInternal             Kind = "INTERNAL"
)

// AppError is a custom error type carrying an HTTP status code plus a stable
// kind alongside the human-readable message.
type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError with an explicit status code and kind.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message}
}

// Helper constructors, one per kind in the taxonomy.

func Validation(msg string) *AppError {
	return New(http.StatusBadRequest, KindValidation, msg)
}

func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, KindUnauthorized, msg)
}

func CategoryAccessDenied(msg string) *AppError {
	return New(http.StatusForbidden, KindCategoryAccessDenied, msg)
}

func InvalidTransition(msg string) *AppError {
	return New(http.StatusConflict, KindInvalidTransition, msg)
}

func TicketClosed(msg string) *AppError {
	return New(http.StatusConflict, KindTicketClosed, msg)
}

func InvalidState(msg string) *AppError {
	return New(http.StatusConflict, KindInvalidState, msg)
}

func SelfFollow(msg string) *AppError {
	return New(http.StatusBadRequest, KindSelfFollow, msg)
}

func ConflictingUpdate(msg string) *AppError {
	return New(http.StatusConflict, KindConflictingUpdate, msg)
}

func NotFound(msg string) *AppError {
	return New(http.StatusNotFound, KindNotFound, msg)
}

func Internal(msg string) *AppError {
	return New(http.StatusInternalServerError, KindInternal, msg)
}

func RateLimited(msg string) *AppError {
	return New(http.StatusTooManyRequests, KindRateLimit, msg)
}
