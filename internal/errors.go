package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "NETWORK_ERROR"
	ErrorTypeApplication  ErrorType = "APPLICATION_ERROR"
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypePartialBatch ErrorType = "PARTIAL_BATCH"
	ErrorTypeBatchFailed  ErrorType = "BATCH_FAILED"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPageSize  ErrorCode = "INVALID_PAGE_SIZE"
	ErrCodeInvalidSort      ErrorCode = "INVALID_SORT"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"

	ErrCodeBackendUnreachable ErrorCode = "BACKEND_UNREACHABLE"
	ErrCodeBackendRejected    ErrorCode = "BACKEND_REJECTED"
	ErrCodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"

	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeSessionExpired   ErrorCode = "SESSION_EXPIRED"
	ErrCodeRoleNotAllowed   ErrorCode = "ROLE_NOT_ALLOWED"
	ErrCodeProtectedRecord  ErrorCode = "PROTECTED_RECORD"
	ErrCodeRowBusy          ErrorCode = "ROW_BUSY"
	ErrCodeRecordNotFound   ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeListNotReady     ErrorCode = "LIST_NOT_READY"
	ErrCodeTooManyAttempts  ErrorCode = "TOO_MANY_ATTEMPTS"

	ErrCodeBatchPartial ErrorCode = "BATCH_PARTIALLY_APPLIED"
	ErrCodeBatchFailed  ErrorCode = "BATCH_FAILED"
)

// Messages shown to the operator when the backend gives nothing better.
const (
	MsgNetworkFailure = "Unable to reach the server. This is usually a network or CORS problem; please contact your administrator."
	MsgGenericFailure = "Something went wrong. Please try again."
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError by type and code so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewNetworkError reports a request that never produced a response from the backend.
func NewNetworkError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Code:       ErrCodeBackendUnreachable,
		Message:    MsgNetworkFailure,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewApplicationError reports an envelope whose statusCode was not 200.
func NewApplicationError(message string, code ErrorCode) *AppError {
	if strings.TrimSpace(message) == "" {
		message = MsgGenericFailure
	}
	return &AppError{
		Type:       ErrorTypeApplication,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeApplication,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyAttempts,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

func NewPartialBatchError(message string, details interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypePartialBatch,
		Code:       ErrCodeBatchPartial,
		Message:    message,
		Details:    details,
		StatusCode: http.StatusMultiStatus,
	}
}

func NewBatchFailedError(message string, details interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeBatchFailed,
		Code:       ErrCodeBatchFailed,
		Message:    message,
		Details:    details,
		StatusCode: http.StatusBadGateway,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrNotAuthenticated = NewUnauthorizedError("Please log in to continue", ErrCodeNotAuthenticated)
	ErrSessionExpired   = NewUnauthorizedError("Your session has expired due to inactivity", ErrCodeSessionExpired)
	ErrRoleNotAllowed   = NewForbiddenError("Your role cannot open this screen", ErrCodeRoleNotAllowed)
	ErrProtectedRecord  = NewForbiddenError("This record is built in and cannot be deleted", ErrCodeProtectedRecord)
	ErrRowBusy          = NewConflictError("Another change to this row is still in progress", ErrCodeRowBusy)
	ErrRecordNotFound   = NewNotFoundError("Record not found", ErrCodeRecordNotFound)
)

// IsAppError unwraps err until it finds an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
