package models

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes form the stable error taxonomy of the API. Handlers translate
// codes to HTTP statuses in one place (StatusForError); everything below the
// transport works in terms of these codes only.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeConflict               = "CONFLICT"
	CodeUnresolvedReference    = "UNRESOLVED_REFERENCE"
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeForbidden              = "FORBIDDEN"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodePartialFailure         = "PARTIAL_FAILURE"
	CodeValidation             = "VALIDATION_ERROR"
	CodeInternal               = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON shape of every error the API returns.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Field      string `json:"field,omitempty"`
	MissingIDs []uint `json:"missing_ids,omitempty"`
	Remaining  string `json:"remaining_step,omitempty"`
}

// AppError is the application error type. Field is set for CONFLICT,
// MissingIDs for UNRESOLVED_REFERENCE and Remaining for PARTIAL_FAILURE.
type AppError struct {
	Code       string
	Message    string
	Field      string
	MissingIDs []uint
	Remaining  string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports an absent entity.
func NewNotFoundError(resource string, id uint) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %d not found", resource, id),
	}
}

// NewConflictError reports a uniqueness violation on the named field.
func NewConflictError(field string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s already exists", field),
		Field:   field,
	}
}

// NewUnresolvedReferenceError reports tag ids that do not resolve to existing tags.
func NewUnresolvedReferenceError(missing []uint) *AppError {
	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return &AppError{
		Code:       CodeUnresolvedReference,
		Message:    "tags not found: " + strings.Join(parts, ", "),
		MissingIDs: missing,
	}
}

// NewAuthenticationRequiredError denies an anonymous caller.
func NewAuthenticationRequiredError() *AppError {
	return &AppError{
		Code:    CodeAuthenticationRequired,
		Message: "Authentication required",
	}
}

// NewForbiddenError denies an authenticated caller that does not own the resource.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewInvalidCredentialsError is deliberately undifferentiated: the same error
// is returned whether the email was unknown or the password wrong.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// NewPartialFailureError reports a multi-step operation that committed its
// first mutation but failed before completing. Remaining names the step the
// caller must retry.
func NewPartialFailureError(remaining string, err error) *AppError {
	return &AppError{
		Code:      CodePartialFailure,
		Message:   "operation partially applied; retry remaining step: " + remaining,
		Remaining: remaining,
		Err:       err,
	}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewInternalError wraps a store or infrastructure failure behind a generic
// message so storage-layer detail never reaches clients.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps an error to its HTTP status.
func StatusForError(err error) int {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return fiberErr.Code
	}
	appErr, ok := err.(*AppError)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeUnresolvedReference:
		return fiber.StatusUnprocessableEntity
	case CodeAuthenticationRequired, CodeInvalidCredentials:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standardized error response for err.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := StatusForError(err)

	if appErr, ok := err.(*AppError); ok {
		return c.Status(status).JSON(ErrorResponse{
			Error:      appErr.Message,
			Code:       appErr.Code,
			Field:      appErr.Field,
			MissingIDs: appErr.MissingIDs,
			Remaining:  appErr.Remaining,
		})
	}
	if fiberErr, ok := err.(*fiber.Error); ok {
		return c.Status(status).JSON(ErrorResponse{Error: fiberErr.Message})
	}
	return c.Status(status).JSON(ErrorResponse{Error: "Internal server error", Code: CodeInternal})
}
