package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/metrics"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/repository"
	"github.com/sakif/video-share/internal/youtube"
)

// DefaultMetadataTimeout bounds one provider lookup.
const DefaultMetadataTimeout = 5 * time.Second

// MetadataFetcher is the part of youtube.Client VideoService needs.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoID string) (*youtube.Metadata, error)
}

// Broadcaster is the part of notify.Hub VideoService needs.
type Broadcaster interface {
	BroadcastNewVideo(ctx context.Context, v model.VideoView) error
}

// UserLookup resolves a user by ID. *AuthService satisfies it.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// VideoService implements sharing and listing.
type VideoService struct {
	users     UserLookup
	videos    repository.VideoRepository
	provider  MetadataFetcher
	broadcast Broadcaster
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewVideoService wires a VideoService. A non-positive timeout means
// DefaultMetadataTimeout. m may be nil.
func NewVideoService(
	users UserLookup,
	videos repository.VideoRepository,
	provider MetadataFetcher,
	broadcast Broadcaster,
	timeout time.Duration,
	logger *slog.Logger,
	m *metrics.Metrics,
) *VideoService {
	if timeout <= 0 {
		timeout = DefaultMetadataTimeout
	}
	return &VideoService{
		users:     users,
		videos:    videos,
		provider:  provider,
		broadcast: broadcast,
		timeout:   timeout,
		logger:    logger,
		metrics:   m,
	}
}

// Share records that requesterID shared videoURL and announces it.
//
// STEPS:
//  1. Resolve the requester (a token for a deleted user → Unauthorized)
//  2. Reject a URL this user already shared (AlreadyShared)
//  3. Extract the video id (InvalidURL)
//  4. Fetch title/description, bounded by the configured timeout
//     (VideoNotFound on zero results, Upstream on anything else)
//  5. Persist (the UNIQUE constraint may still say AlreadyShared)
//  6. Broadcast to realtime listeners; failures are logged, never returned
//
// The duplicate check and the insert are not one transaction. Under a race
// both requests pass step 2, and exactly one wins step 5.
func (s *VideoService) Share(ctx context.Context, requesterID, videoURL string) (view *model.VideoView, err error) {
	defer func() { s.metrics.ObserveShare(err) }()

	user, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized()
		}
		return nil, apperror.Persistence("share video", err)
	}

	exists, err := s.videos.ExistsForUser(ctx, user.ID, videoURL)
	if err != nil {
		return nil, apperror.Persistence("share video", err)
	}
	if exists {
		return nil, apperror.AlreadyShared()
	}

	videoID, ok := youtube.ExtractVideoID(videoURL)
	if !ok {
		return nil, apperror.InvalidURL()
	}

	md, err := s.fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	video := &model.Video{
		Title:       md.Title,
		Description: md.Description,
		VideoURL:    videoURL,
		SharedBy:    user.ID,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, apperror.Persistence("save video", err)
	}

	v := video.View(user.Email)

	// The share is committed; a client hanging up now must not stop the
	// announcement.
	if err := s.broadcast.BroadcastNewVideo(context.WithoutCancel(ctx), v); err != nil {
		s.logger.Warn("broadcasting new video failed",
			slog.String("videoID", v.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("video shared",
		slog.String("videoID", v.ID),
		slog.String("userID", user.ID),
		slog.String("youtubeID", videoID),
	)

	return &v, nil
}

// List returns every share, newest first, with the sharer's email.
func (s *VideoService) List(ctx context.Context) ([]model.VideoView, error) {
	views, err := s.videos.ListWithSharer(ctx)
	if err != nil {
		return nil, apperror.Persistence("fetch videos", err)
	}
	return views, nil
}

func (s *VideoService) fetch(ctx context.Context, videoID string) (*youtube.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	md, err := s.provider.FetchMetadata(ctx, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrVideoNotFound) {
			return nil, apperror.VideoNotFound()
		}
		s.logger.Warn("video metadata lookup failed",
			slog.String("youtubeID", videoID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream(fmt.Errorf("service/video: fetching %s: %w", videoID, err))
	}
	return md, nil
}
