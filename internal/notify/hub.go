// Package notify fans newly shared videos out to connected realtime listeners.
//
// DELIVERY CONTRACT:
//   - at most once, best effort: each listener has a small buffer and a send
//     that would block is dropped for that listener only;
//   - no replay: a listener sees only events broadcast after it subscribed;
//   - a slow or dead listener never delays the share that triggered the event.
//
// The hub is an injected value (server → VideoService and EventsHandler);
// there is no package-level state.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/metrics"
	"github.com/sakif/video-share/internal/model"
)

// DefaultBuffer is how many undelivered events a listener may queue.
const DefaultBuffer = 16

// EventNewVideo is the name of the event carrying a freshly shared video.
const EventNewVideo = "newVideo"

// Event is one message for a listener.
type Event struct {
	Name  string
	Video model.VideoView
}

// Listener is one subscribed connection.
type Listener struct {
	ID       string
	Identity auth.Identity

	mu     sync.Mutex // guards closed and sends on events
	closed bool
	events chan Event
}

// Events is the receive side. It is closed when the listener is unsubscribed.
func (l *Listener) Events() <-chan Event {
	return l.events
}

func (l *Listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.events)
	}
}

// offer is a non-blocking send. It reports false when the buffer is full or
// the listener has already been closed.
func (l *Listener) offer(ev Event) (sent, full bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, false
	}
	select {
	case l.events <- ev:
		return true, false
	default:
		return false, true
	}
}

// Hub is a concurrency-safe set of listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]*Listener
	buffer    int

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHub creates an empty hub. m may be nil.
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		listeners: make(map[string]*Listener),
		buffer:    DefaultBuffer,
		logger:    logger,
		metrics:   m,
	}
}

// Subscribe registers a listener for an authenticated identity.
func (h *Hub) Subscribe(id auth.Identity) *Listener {
	l := &Listener{
		ID:       uuid.NewString(),
		Identity: id,
		events:   make(chan Event, h.buffer),
	}

	h.mu.Lock()
	h.listeners[l.ID] = l
	n := len(h.listeners)
	h.mu.Unlock()

	h.metrics.SetListeners(n)
	h.logger.Debug("realtime listener subscribed",
		slog.String("listener_id", l.ID),
		slog.String("user_id", id.UserID),
	)
	return l
}

// Unsubscribe removes l and closes its channel. Calling it twice is harmless.
func (h *Hub) Unsubscribe(l *Listener) {
	h.mu.Lock()
	_, present := h.listeners[l.ID]
	delete(h.listeners, l.ID)
	n := len(h.listeners)
	h.mu.Unlock()

	l.close()
	if present {
		h.metrics.SetListeners(n)
		h.logger.Debug("realtime listener unsubscribed", slog.String("listener_id", l.ID))
	}
}

// Count returns the number of subscribed listeners.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// BroadcastNewVideo delivers a newVideo event to every current listener.
//
// The listener set is copied under the read lock and sends happen outside
// it. Each send is non-blocking, so this returns promptly regardless of
// listener health. The only error is ctx being done before the fan-out starts.
func (h *Hub) BroadcastNewVideo(ctx context.Context, v model.VideoView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		targets = append(targets, l)
	}
	h.mu.RUnlock()

	ev := Event{Name: EventNewVideo, Video: v}
	delivered := 0
	for _, l := range targets {
		if h.trySend(l, ev) {
			delivered++
		}
	}

	h.logger.Debug("broadcast newVideo",
		slog.String("video_id", v.ID),
		slog.Int("listeners", len(targets)),
		slog.Int("delivered", delivered),
	)
	return nil
}

// trySend delivers ev to l if there is room. A listener unsubscribed between
// the snapshot and the send is skipped silently.
func (h *Hub) trySend(l *Listener, ev Event) bool {
	sent, full := l.offer(ev)
	if full {
		h.metrics.IncDropped()
		h.logger.Warn("dropping event for slow listener", slog.String("listener_id", l.ID))
	}
	return sent
}
