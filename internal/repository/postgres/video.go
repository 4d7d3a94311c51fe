package postgres

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

// VideoRepo is the Postgres share store.
type VideoRepo struct {
	conn *sql.DB
}

// Create inserts a share. A violation of videos_shared_by_video_url_key
// means this user already shared this URL.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	now := time.Now().UTC()
	v.ID = xid.New().String()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO videos (id, title, description, video_url, shared_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.Title, v.Description, v.VideoURL, v.SharedBy, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyShared()
		}
		return fmt.Errorf("postgres: creating video: %w", err)
	}
	return nil
}

func (r *VideoRepo) ExistsForUser(ctx context.Context, userID, videoURL string) (bool, error) {
	var exists bool
	err := r.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE shared_by = $1 AND video_url = $2)`,
		userID, videoURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: checking video exists: %w", err)
	}
	return exists, nil
}

// ListWithSharer returns every share with its sharer's email, newest first.
func (r *VideoRepo) ListWithSharer(ctx context.Context) ([]model.VideoView, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT v.id, v.title, v.description, v.video_url, u.email, v.created_at, v.updated_at
		 FROM videos v
		 JOIN users u ON u.id = v.shared_by
		 ORDER BY v.created_at DESC, v.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing videos: %w", err)
	}
	defer rows.Close()

	views := []model.VideoView{}
	for rows.Next() {
		var v model.VideoView
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.SharedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning video row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating video rows: %w", err)
	}
	return views, nil
}
