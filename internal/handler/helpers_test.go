package handler_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("handler-test-secret-0123456789")
	require.NoError(t, err)
	return ts
}

// bearer returns a ready-to-use Authorization header value.
func bearer(t *testing.T, ts *auth.TokenService, userID, email string) string {
	t.Helper()
	tok, err := ts.Issue(auth.Claims{UserID: userID, Email: email})
	require.NoError(t, err)
	return "Bearer " + tok
}

// fakeAuth implements handler.Authenticator with canned answers.
type fakeAuth struct {
	result  *service.AuthResult
	err     error
	users   map[string]*model.User
	gotArgs [2]string
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*service.AuthResult, error) {
	f.gotArgs = [2]string{email, password}
	return f.result, f.err
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	f.gotArgs = [2]string{email, password}
	return f.result, f.err
}

func (f *fakeAuth) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

// fakeVideos implements handler.VideoSharer.
type fakeVideos struct {
	mu        sync.Mutex
	shareErr  error
	listErr   error
	views     []model.VideoView
	calls     int
	requester string
	url       string
}

func (f *fakeVideos) Share(ctx context.Context, requesterID, videoURL string) (*model.VideoView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requester, f.url = requesterID, videoURL
	if f.shareErr != nil {
		return nil, f.shareErr
	}
	return &model.VideoView{ID: "v1", VideoURL: videoURL, Title: "T", CreatedAt: time.Now()}, nil
}

func (f *fakeVideos) List(ctx context.Context) ([]model.VideoView, error) {
	return f.views, f.listErr
}

// fakePinger implements handler.Pinger.
type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }
