// GO TESTING BASICS:
// 1. Test files MUST end in _test.go: Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Instead of writing a separate test function per constructor, we define a
// slice of cases and loop over them. Adding a case = adding one struct.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("user", "abc123"), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("email", "email is required"), ErrValidation, true},
		{"EmailInUse is a conflict", EmailInUse(), ErrConflict, true},
		{"AlreadyShared is a conflict", AlreadyShared(), ErrConflict, true},
		{"InvalidURL is a validation error", InvalidURL(), ErrValidation, true},
		{"VideoNotFound is a not-found", VideoNotFound(), ErrNotFound, true},
		{"Unauthorized wraps ErrUnauthorized", Unauthorized(), ErrUnauthorized, true},
		{"Upstream wraps ErrUpstream", Upstream(errors.New("boom")), ErrUpstream, true},
		{"Persistence wraps ErrPersistence", Persistence("save video", errors.New("disk full")), ErrPersistence, true},
		{"NotFound does NOT match ErrValidation", NotFound("user", "abc123"), ErrValidation, false},
		{"AlreadyShared does NOT match ErrNotFound", AlreadyShared(), ErrNotFound, false},
		{"wrapped with fmt.Errorf still matches", fmt.Errorf("service: %w", AlreadyShared()), ErrConflict, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"NotFound message includes resource and id", NotFound("user", "abc123"), "user not found with id abc123"},
		{"ValidationFailed uses custom message", ValidationFailed("email", "email is required"), "email is required"},
		{"Unauthorized is uniform", Unauthorized(), "Unauthorized"},
		{"EmailInUse", EmailInUse(), "Email already in use"},
		{"AlreadyShared", AlreadyShared(), "You already shared this video"},
		{"VideoNotFound", VideoNotFound(), "Video not found"},
		{"Persistence names the operation", Persistence("save video", errors.New("x")), "Failed to save video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap_IncludesCause(t *testing.T) {
	// An upstream timeout must still be recognisable as a deadline error,
	// so callers can tell a slow provider from a broken one in logs.
	err := Upstream(fmt.Errorf("youtube: %w", context.DeadlineExceeded))

	if !errors.Is(err, ErrUpstream) {
		t.Error("errors.Is(err, ErrUpstream) = false, want true")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, context.DeadlineExceeded) = false, want true")
	}
}

func TestUnwrap_WithoutCause(t *testing.T) {
	unwrapped := NotFound("user", "abc123").Unwrap()

	if len(unwrapped) != 1 || unwrapped[0] != ErrNotFound {
		t.Errorf("Unwrap() = %v, want [%v]", unwrapped, ErrNotFound)
	}
}

func TestErrorsAs_ExtractsField(t *testing.T) {
	// Handlers use errors.As to reach the Field for the response body.
	err := fmt.Errorf("service/video: %w", InvalidURL())

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As() = false, want true")
	}
	if appErr.Field != "videoUrl" {
		t.Errorf("Field = %q, want %q", appErr.Field, "videoUrl")
	}
}
