package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/repository"
)

var _ repository.VideoRepository = (*VideoRepo)(nil)

// VideoRepo is the SQLite share store.
type VideoRepo struct {
	conn *sql.DB
}

// Create inserts a share, filling in ID and timestamps.
//
// (shared_by, video_url) is UNIQUE, so a duplicate share that slipped past
// ExistsForUser is rejected here and reported as AlreadyShared.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	now := time.Now().UTC()
	v.ID = xid.New().String()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO videos (id, title, description, video_url, shared_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.Title,
		v.Description,
		v.VideoURL,
		v.SharedBy,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyShared()
		}
		return fmt.Errorf("sqlite: creating video: %w", err)
	}

	return nil
}

// ExistsForUser reports whether userID has already shared videoURL.
// The URL is compared exactly as stored; no canonicalization.
func (r *VideoRepo) ExistsForUser(ctx context.Context, userID, videoURL string) (bool, error) {
	var exists bool
	err := r.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE shared_by = ? AND video_url = ?)`,
		userID, videoURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking video exists: %w", err)
	}
	return exists, nil
}

// ListWithSharer returns every share joined to its sharer's email, newest first.
//
// rowid breaks ties between rows written within the same clock tick so the
// order is still insertion order, newest first.
func (r *VideoRepo) ListWithSharer(ctx context.Context) ([]model.VideoView, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT v.id, v.title, v.description, v.video_url, u.email, v.created_at, v.updated_at
		 FROM videos v
		 JOIN users u ON u.id = v.shared_by
		 ORDER BY v.created_at DESC, v.rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing videos: %w", err)
	}
	// defer rows.Close() releases the connection back to the pool. Forgetting
	// it with SetMaxOpenConns(1) would deadlock the next query.
	defer rows.Close()

	// Initialize as empty slice (not nil) so JSON encodes [] instead of null.
	views := []model.VideoView{}
	for rows.Next() {
		var v model.VideoView
		if err := rows.Scan(
			&v.ID,
			&v.Title,
			&v.Description,
			&v.VideoURL,
			&v.SharedBy,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning video row: %w", err)
		}
		views = append(views, v)
	}

	// rows.Err() reports errors that ended iteration early.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating video rows: %w", err)
	}

	return views, nil
}
