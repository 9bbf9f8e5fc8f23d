package dto

import "net/http"

// Transport-level error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	// Malformed requests -> 400 Bad Request
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	"TOKEN_EXPIRED":        http.StatusUnauthorized,
	"TOKEN_INVALID":        http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":    http.StatusUnauthorized,
	"TOKEN_ERROR":          http.StatusUnauthorized,
	"TOKEN_REVOKED":        http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	"ACCOUNT_INACTIVE":     http.StatusForbidden,
	"NOT_A_TEAM_MEMBER":    http.StatusForbidden,
	"NOT_A_PROJECT_MEMBER": http.StatusForbidden,
	"NO_TEAM":              http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:  http.StatusNotFound,
	"USER_NOT_FOUND": http.StatusNotFound,

	// Conflicts -> 409, some of them retryable
	"ALREADY_EXISTS":       http.StatusConflict,
	"EMAIL_TAKEN":          http.StatusConflict,
	"ALREADY_MEMBER":       http.StatusConflict,
	"DUPLICATE_NUMBER":     http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_CONVERTED":    http.StatusConflict,
	"NOT_EDITABLE":         http.StatusConflict,
	"ROLLUP_LOCK_TIMEOUT":  http.StatusConflict,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted domain codes are business rule violations and map to 422.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if code == "" {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}
