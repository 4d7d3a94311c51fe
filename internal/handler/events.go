package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/notify"
)

const (
	// EventError is sent once, right before the server closes a stream it
	// refused to authenticate.
	EventError = "error"
	// EventPing keeps idle proxies from timing the stream out.
	EventPing = "ping"

	defaultHeartbeat = 25 * time.Second
)

// EventsHandler is the realtime channel: a long-lived Server-Sent Events
// stream per client.
//
// WHY SSE?
// Updates only flow server → client, which is exactly what SSE does. It
// rides on plain HTTP (no upgrade), works through the same middleware and
// browsers reconnect automatically.
type EventsHandler struct {
	tokens    *auth.TokenService
	hub       *notify.Hub
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewEventsHandler creates an EventsHandler. heartbeat <= 0 uses 25s.
func NewEventsHandler(tokens *auth.TokenService, hub *notify.Hub, heartbeat time.Duration, logger *slog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{tokens: tokens, hub: hub, logger: logger, heartbeat: heartbeat}
}

// HandleEvents streams realtime notifications.
//
// HTTP: GET /api/events
// Auth: "Authorization: Bearer <jwt>", or ?token=<jwt> for EventSource,
// which cannot set headers.
//
// STREAM:
//
//	event: newVideo
//	data: {"id":"...","title":"...","sharedBy":"a@b.co",...}
//
// A bad or missing token gets a single "error" event carrying
// {"message":"Unauthorized"} and the stream ends. The response status is
// still 200 because the headers go out before the event, so clients must
// watch for the error event rather than the status code. The listener is removed
// from the hub when the client disconnects.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	id, authErr := auth.AuthenticateToken(r.Header.Get("Authorization"), r.URL.Query().Get("token"), h.tokens)

	// The server's WriteTimeout is sized for ordinary requests; a stream
	// lives until the client leaves. Writers that can't clear it (test
	// recorders) are fine to leave alone.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	// NewSSE sends the event-stream headers and flushes them immediately.
	sse := datastar.NewSSE(w, r)

	if authErr != nil {
		h.logger.Info("realtime handshake rejected", slog.String("remote", r.RemoteAddr))
		h.send(sse, EventError, MessageResponse{Message: apperror.MsgUnauthorized})
		return
	}

	listener := h.hub.Subscribe(*id)
	defer h.hub.Unsubscribe(listener)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-listener.Events():
			if !ok {
				return
			}
			if err := h.send(sse, ev.Name, ev.Video); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.send(sse, EventPing, struct{}{}); err != nil {
				return
			}
		}
	}
}

// send writes one named event with a single JSON data line.
func (h *EventsHandler) send(sse *datastar.ServerSentEventGenerator, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encoding realtime event", slog.String("event", name), slog.String("error", err.Error()))
		return err
	}
	if err := sse.Send(datastar.EventType(name), []string{string(data)}); err != nil {
		h.logger.Debug("realtime client gone", slog.String("event", name), slog.String("error", err.Error()))
		return err
	}
	return nil
}
