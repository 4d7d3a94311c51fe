// Package apperror defines the application's error taxonomy.
//
// Every error that crosses a layer boundary (repository → service → handler)
// is either an *AppError wrapping one of the sentinels below, or an
// unexpected error that the handler reports as a generic 500.
//
// ERROR FAMILIES:
//   - client errors:      ErrValidation, ErrUnauthorized, ErrNotFound, ErrConflict
//   - upstream errors:    ErrUpstream    (the video provider misbehaved)
//   - persistence errors: ErrPersistence (the store failed)
//
// Handlers use errors.Is against the sentinels to pick a status code, and
// AppError.Message as the stable, client-facing text.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream error")
	ErrPersistence  = errors.New("persistence error")
)

// Stable client-facing messages. Tests and clients match on these.
const (
	MsgUnauthorized  = "Unauthorized"
	MsgEmailInUse    = "Email already in use"
	MsgAlreadyShared = "You already shared this video"
	MsgInvalidURL    = "videoUrl is invalid. url must be a valid youtube url"
	MsgVideoNotFound = "Video not found"
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: lower-level error kept for logs, never shown to clients
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is works against
// either (e.g. errors.Is(err, context.DeadlineExceeded) on an upstream error).
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized is deliberately uniform: missing header, bad token, expired
// token, unknown email and wrong password all produce the same error.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: MsgUnauthorized,
	}
}

// EmailInUse is returned by registration when the normalized email exists.
func EmailInUse() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: MsgEmailInUse,
		Field:   "email",
	}
}

// AlreadyShared is returned when the same user shares the same URL twice.
func AlreadyShared() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: MsgAlreadyShared,
		Field:   "videoUrl",
	}
}

func InvalidURL() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: MsgInvalidURL,
		Field:   "videoUrl",
	}
}

// VideoNotFound means the provider answered but knows no such video.
func VideoNotFound() *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: MsgVideoNotFound,
	}
}

// Upstream wraps a provider failure (transport, non-200, bad payload, timeout).
func Upstream(cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: "Failed to fetch video details",
		Cause:   cause,
	}
}

// Persistence wraps a store failure. op names what was being attempted.
func Persistence(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Message: fmt.Sprintf("Failed to %s", op),
		Cause:   cause,
	}
}
