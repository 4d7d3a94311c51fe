// Package youtube talks to the YouTube Data API v3 to turn a video id into
// its canonical title and description.
//
// Only one endpoint is used:
//
//	GET {base}/videos?id=<id>&part=snippet,contentDetails&key=<apiKey>
//
// AUTH MODES:
//   - API key (default): the key goes in the query string.
//   - OAuth2 bearer: when an access token is configured, requests go through
//     an oauth2 transport that adds "Authorization: Bearer ..." and no key
//     is sent. Useful with service accounts or short-lived tokens.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

var (
	// ErrVideoNotFound means the API answered normally but returned no items.
	ErrVideoNotFound = errors.New("youtube: video not found")
	// ErrUpstream covers transport failures, non-200 answers and bad payloads.
	ErrUpstream = errors.New("youtube: upstream failure")
)

// Metadata is what we keep from a video resource.
type Metadata struct {
	ID          string
	Title       string
	Description string
	Duration    string // ISO 8601, e.g. "PT3M33S"
}

// Config configures a Client. Zero values get defaults.
type Config struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
}

// Client fetches video metadata. Safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	useOAuth bool
	http     *http.Client
	logger   *slog.Logger
}

// NewClient builds a Client. When cfg.AccessToken is set the OAuth2 bearer
// mode is used and cfg.APIKey is ignored.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}

	if cfg.AccessToken != "" {
		// oauth2.NewClient wraps the transport of the client stored in the
		// context (or http.DefaultClient) with one that injects the token.
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		c.http = oauth2.NewClient(context.Background(), src)
		c.http.Timeout = timeout
		c.useOAuth = true
	} else {
		c.http = &http.Client{Timeout: timeout}
	}

	return c
}

// videoListResponse is the subset of the API's videos.list payload we read.
type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// FetchMetadata looks up one video by id.
//
// Returns ErrVideoNotFound when the API has no such video, and an error
// wrapping ErrUpstream for everything else that goes wrong (including ctx
// expiring, in which case the context error is wrapped too).
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	q := url.Values{}
	q.Set("id", videoID)
	q.Set("part", "snippet,contentDetails")
	if !c.useOAuth {
		q.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/videos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("youtube videos.list",
		slog.String("video_id", videoID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the log line; the API puts the
		// reason (quotaExceeded, keyInvalid, ...) there.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload videoListResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrUpstream, err)
	}

	if len(payload.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := payload.Items[0]
	return &Metadata{
		ID:          item.ID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Duration:    item.ContentDetails.Duration,
	}, nil
}
