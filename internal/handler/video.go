package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/service"
)

// VideoSharer is the part of service.VideoService the handlers call.
type VideoSharer interface {
	Share(ctx context.Context, requesterID, videoURL string) (*model.VideoView, error)
	List(ctx context.Context) ([]model.VideoView, error)
}

var _ VideoSharer = (*service.VideoService)(nil)

// VideoHandler serves the shared-video feed.
type VideoHandler struct {
	videos VideoSharer
	logger *slog.Logger
}

// NewVideoHandler creates a VideoHandler.
func NewVideoHandler(videos VideoSharer, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, logger: logger}
}

// ShareRequest is the body of POST /api/videos.
type ShareRequest struct {
	VideoURL string `json:"videoUrl"`
}

// VideoListResponse wraps the feed so fields can be added without breaking clients.
type VideoListResponse struct {
	Videos []model.VideoView `json:"videos"`
}

// MsgShared is the body message of a successful share.
const MsgShared = "Video shared successfully"

// HandleShare shares a YouTube video on behalf of the caller.
//
// HTTP: POST /api/videos
// Auth: Required
// REQUEST BODY: {"videoUrl": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
//
// RESPONSES:
//   - 201 {"message": "Video shared successfully"}
//   - 400 the URL is missing or not a YouTube video link
//   - 404 the provider has no such video
//   - 409 the caller already shared this URL
//   - 502 the provider failed or timed out
//
// The URL shape is checked here, before the service runs, so a bad link
// never costs a database or provider round trip.
func (h *VideoHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	var req ShareRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := service.ValidateVideoURL(req.VideoURL); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.videos.Share(r.Context(), id.UserID, req.VideoURL); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: MsgShared})
}

// HandleList returns every shared video, newest first.
//
// HTTP: GET /api/videos
//
// RESPONSE FORMAT:
//
//	{"videos": [
//	  {"id":"...","title":"...","description":"...","videoUrl":"...","sharedBy":"a@b.co",...},
//	  ...
//	]}
//
// An empty feed is {"videos": []}, never null.
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.videos.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if views == nil {
		views = []model.VideoView{}
	}

	writeJSON(w, http.StatusOK, VideoListResponse{Videos: views})
}
