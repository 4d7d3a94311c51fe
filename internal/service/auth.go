// Package service holds the authentication and video-sharing business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt), TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Register: validate, reject taken emails, hash, persist, issue a token
//   - Login: check credentials, issue a token
//   - Keep "unknown email" and "wrong password" indistinguishable
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/metrics"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/repository"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue/verify JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
//   - metrics    *metrics.Metrics           → outcome counters (may be nil)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// dummyDigest is compared against on "no such user" so that path costs
	// one bcrypt verification, like the "wrong password" path.
	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		metrics:   m,
	}
}

// AuthResult is returned by authentication operations.
// It bundles the user record and the issued JWT together so the handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates an account and signs the new user in.
//
//  1. Validate the input (ValidateRegistration)
//  2. Normalize the email and reject it if already registered
//  3. Hash the password and persist the user
//  4. Issue a token
//
// Two concurrent registrations for one address can both pass step 2; the
// store's UNIQUE constraint makes the slower one fail with EmailInUse.
func (s *AuthService) Register(ctx context.Context, email, password string) (result *AuthResult, err error) {
	defer func() { s.metrics.ObserveRegistration(err) }()

	if err := ValidateRegistration(email, password); err != nil {
		return nil, err
	}
	email = model.NormalizeEmail(email)

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.EmailInUse()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.Persistence("register user", err)
	}

	digest, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: digest}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, apperror.Persistence("register user", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks credentials and issues a token.
//
// UNIFORM FAILURE:
// An unknown email and a wrong password both return apperror.Unauthorized()
// with the same message, so the response can't be used to discover which
// addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	defer func() { s.metrics.ObserveLogin(err) }()

	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}
	email = model.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Burn the same bcrypt time as a real comparison.
			_, _ = s.passwords.Verify(s.dummy(), password)
			return nil, apperror.Unauthorized()
		}
		return nil, apperror.Persistence("log in", err)
	}

	ok, err := s.passwords.Verify(user.PasswordHash, password)
	if err != nil {
		// A corrupt digest is our problem, not the caller's: surface as 500.
		s.logger.Error("stored password digest is unreadable",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", user.ID, err)
	}
	if !ok {
		return nil, apperror.Unauthorized()
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID.
//
// Used by /api/me and by VideoService to resolve the sharer.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty: %w", apperror.NotFound("user", id))
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// ValidateToken verifies a JWT and returns the identity it carries.
//
// This is a thin delegation to TokenService.Verify. Every failure becomes
// apperror.Unauthorized().
func (s *AuthService) ValidateToken(tokenStr string) (*auth.Identity, error) {
	id, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperror.Unauthorized()
	}
	return id, nil
}

func (s *AuthService) issue(user *model.User) (string, error) {
	token, err := s.tokens.Issue(auth.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}
	return token, nil
}

// dummy lazily hashes a throwaway password with the service's own cost.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		d, err := s.passwords.Hash("not-a-real-password")
		if err != nil {
			s.logger.Warn("could not prepare dummy digest", slog.String("error", err.Error()))
		}
		s.dummyDigest = d
	})
	return s.dummyDigest
}
