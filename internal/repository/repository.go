// Package repository declares the storage contracts the services depend on.
//
// Two implementations live in sub-packages: sqlite (embedded, the default)
// and postgres. Both enforce the same uniqueness rules with constraints and
// report violations as *apperror.AppError values wrapping ErrConflict, so
// services never inspect driver-specific errors.
package repository

import (
	"context"

	"github.com/sakif/video-share/internal/model"
)

// UserRepository is the credential store.
//
// Emails passed in are expected to be normalized already (model.NormalizeEmail).
type UserRepository interface {
	// Create persists u. A duplicate email yields apperror.EmailInUse().
	Create(ctx context.Context, u *model.User) error
	// GetByEmail returns an apperror.ErrNotFound error when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByID returns an apperror.ErrNotFound error when absent.
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// VideoRepository stores shares.
type VideoRepository interface {
	// Create persists v. A second share of the same URL by the same user
	// yields apperror.AlreadyShared().
	Create(ctx context.Context, v *model.Video) error
	// ExistsForUser reports whether userID already shared videoURL.
	ExistsForUser(ctx context.Context, userID, videoURL string) (bool, error)
	// ListWithSharer returns every share, newest first, with the sharer's email.
	ListWithSharer(ctx context.Context) ([]model.VideoView, error)
}

// Store bundles both repositories plus lifecycle, so the server can pick a
// backend at startup without knowing which one it got.
type Store interface {
	Users() UserRepository
	Videos() VideoRepository
	Ping(ctx context.Context) error
	Close() error
}
