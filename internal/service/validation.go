package service

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/youtube"
)

const (
	minPasswordLen   = 8
	maxPasswordLen   = 20
	// bcrypt hashes at most 72 bytes; multi-byte characters reach it before 20 runes do.
	maxPasswordBytes = 72
	maxEmailLen      = 254
)

// VALIDATION AS PLAIN FUNCTIONS:
// Each validator returns nil or an *apperror.AppError (as error) whose Field
// names the offending input. Handlers call them before touching a service,
// and services call them again so they are safe to use without HTTP.

// ValidateRegistration checks a sign-up request.
//
// email must be a bare address ("a@b.co", not "Alice <a@b.co>").
// password must be 8-20 characters with at least one upper-case letter, one
// lower-case letter, one digit and one special character, and no whitespace.
func ValidateRegistration(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}

// ValidateLogin only requires both fields to be present. Anything stricter
// would tell an attacker which rule a guess broke.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}
	return nil
}

// ValidateVideoURL checks the submitted URL is a recognized YouTube video link.
func ValidateVideoURL(videoURL string) error {
	if strings.TrimSpace(videoURL) == "" {
		return apperror.ValidationFailed("videoUrl", "videoUrl is required")
	}
	if !youtube.IsVideoURL(videoURL) {
		return apperror.InvalidURL()
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > maxEmailLen {
		return apperror.ValidationFailed("email", "email is too long")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return apperror.ValidationFailed("email", "email must be an email")
	}

	// net/mail accepts dotless domains ("a@localhost"); sign-ups need a real one.
	at := strings.LastIndexByte(email, '@')
	if domain := email[at+1:]; !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return apperror.ValidationFailed("email", "email must be an email")
	}
	return nil
}

func validatePassword(password string) error {
	n := len([]rune(password))
	if n < minPasswordLen || n > maxPasswordLen {
		return apperror.ValidationFailed("password", "password must be between 8 and 20 characters")
	}
	if len(password) > maxPasswordBytes {
		return apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return apperror.ValidationFailed("password", "password must not contain spaces")
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return apperror.ValidationFailed("password",
			"password is not strong enough: use upper and lower case letters, a digit and a symbol")
	}
	return nil
}
