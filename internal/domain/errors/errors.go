package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrConflict           = errors.New("concurrent modification")
	ErrLocked             = errors.New("resource is locked")

	// Visa workflow
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrStepNotAvailable    = errors.New("step not available")
	ErrStepNotFound        = errors.New("step not found")
	ErrStepNotReviewable   = errors.New("step is not pending review; it must be reuploaded first")
	ErrFeedbackRequired    = errors.New("feedback is required when rejecting")
	ErrFileRequired        = errors.New("file is required")
	ErrInvalidDecision     = errors.New("invalid review decision")

	// Onboarding
	ErrApplicationLocked     = errors.New("application cannot be modified in its current status")
	ErrApplicationNotPending = errors.New("application is not pending review")

	// Invitations
	ErrInvitationInvalid = errors.New("invitation is invalid")
	ErrInvitationExpired = errors.New("invitation has expired")
)

// Error codes returned to API clients
const (
	CodeBadRequest          = "ERR_BAD_REQUEST"
	CodeInvalidInput        = "ERR_INVALID_INPUT"
	CodeNotFound            = "ERR_NOT_FOUND"
	CodeConflict            = "ERR_CONFLICT"
	CodeUnauthorized        = "ERR_UNAUTHORIZED"
	CodeForbidden           = "ERR_FORBIDDEN"
	CodeInvalidCredentials  = "ERR_INVALID_CREDENTIALS"
	CodeInternalError       = "ERR_INTERNAL"
	CodeUnknownDocumentType = "ERR_UNKNOWN_DOCUMENT_TYPE"
	CodeStepNotAvailable    = "ERR_STEP_NOT_AVAILABLE"
	CodeStepNotFound        = "ERR_STEP_NOT_FOUND"
	CodeStepNotReviewable   = "ERR_STEP_NOT_REVIEWABLE"
	CodeFeedbackRequired    = "ERR_FEEDBACK_REQUIRED"
	CodeFileRequired        = "ERR_FILE_REQUIRED"
	CodeInvalidDecision     = "ERR_INVALID_DECISION"
	CodeApplicationLocked   = "ERR_APPLICATION_LOCKED"
	CodeApplicationPending  = "ERR_APPLICATION_NOT_PENDING"
	CodeInvitationInvalid   = "ERR_INVITATION_INVALID"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// StepNotAvailable reports an out-of-sequence upload together with the reason
// the step is blocked.
func StepNotAvailable(reason string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeStepNotAvailable, reason, fmt.Errorf("%w: %s", ErrStepNotAvailable, reason))
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// FromDomain maps a sentinel domain error to its API representation. Errors
// that are already an *AppError are returned unchanged; anything unknown
// becomes an internal error.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrUnknownDocumentType):
		return NewAppError(http.StatusBadRequest, CodeUnknownDocumentType, err.Error(), err)
	case errors.Is(err, ErrFeedbackRequired):
		return NewAppError(http.StatusBadRequest, CodeFeedbackRequired, err.Error(), err)
	case errors.Is(err, ErrFileRequired):
		return NewAppError(http.StatusBadRequest, CodeFileRequired, err.Error(), err)
	case errors.Is(err, ErrInvalidDecision):
		return NewAppError(http.StatusBadRequest, CodeInvalidDecision, err.Error(), err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrStepNotAvailable):
		return NewAppError(http.StatusUnprocessableEntity, CodeStepNotAvailable, err.Error(), err)
	case errors.Is(err, ErrStepNotFound):
		return NewAppError(http.StatusNotFound, CodeStepNotFound, err.Error(), err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrStepNotReviewable):
		return NewAppError(http.StatusConflict, CodeStepNotReviewable, err.Error(), err)
	case errors.Is(err, ErrApplicationLocked):
		return NewAppError(http.StatusConflict, CodeApplicationLocked, err.Error(), err)
	case errors.Is(err, ErrApplicationNotPending):
		return NewAppError(http.StatusConflict, CodeApplicationPending, err.Error(), err)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrLocked), errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrInvitationExpired):
		return NewAppError(http.StatusGone, CodeInvitationInvalid, err.Error(), err)
	case errors.Is(err, ErrInvitationInvalid):
		return NewAppError(http.StatusBadRequest, CodeInvitationInvalid, err.Error(), err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "invalid username or password", err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	}
	return InternalError(err)
}
