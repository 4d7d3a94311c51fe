package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/metrics"
	"github.com/sakif/video-share/internal/model"
)

func newTestHub(t *testing.T) (*Hub, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), m), m
}

func alice() auth.Identity { return auth.Identity{UserID: "u-alice", Email: "alice@example.com"} }

func video(id string) model.VideoView {
	return model.VideoView{ID: id, Title: "t-" + id, VideoURL: "https://youtu.be/dQw4w9WgXcQ", SharedBy: "alice@example.com"}
}

// receive waits briefly for one event; delivery is synchronous so this
// only guards against a hung test.
func receive(t *testing.T, l *Listener) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-l.Events():
		return ev, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestSubscribeUnsubscribe_Count(t *testing.T) {
	h, m := newTestHub(t)

	l1 := h.Subscribe(alice())
	l2 := h.Subscribe(alice())
	assert.Equal(t, 2, h.Count())
	assert.NotEqual(t, l1.ID, l2.ID)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RealtimeListeners))

	h.Unsubscribe(l1)
	h.Unsubscribe(l1) // idempotent
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RealtimeListeners))

	_, open := <-l1.Events()
	assert.False(t, open, "unsubscribed listener's channel must be closed")
}

func TestBroadcast_ReachesEveryListener(t *testing.T) {
	h, _ := newTestHub(t)
	listeners := []*Listener{h.Subscribe(alice()), h.Subscribe(alice()), h.Subscribe(alice())}

	require.NoError(t, h.BroadcastNewVideo(context.Background(), video("v1")))

	for _, l := range listeners {
		ev, ok := receive(t, l)
		require.True(t, ok)
		assert.Equal(t, EventNewVideo, ev.Name)
		assert.Equal(t, "v1", ev.Video.ID)
	}
}

func TestBroadcast_NoListenersIsFine(t *testing.T) {
	h, _ := newTestHub(t)
	assert.NoError(t, h.BroadcastNewVideo(context.Background(), video("v1")))
}

func TestBroadcast_NoReplayForLateSubscribers(t *testing.T) {
	h, _ := newTestHub(t)

	require.NoError(t, h.BroadcastNewVideo(context.Background(), video("early")))
	late := h.Subscribe(alice())
	require.NoError(t, h.BroadcastNewVideo(context.Background(), video("later")))

	ev, _ := receive(t, late)
	assert.Equal(t, "later", ev.Video.ID)
	assert.Len(t, late.Events(), 0)
}

func TestBroadcast_SlowListenerDropsWithoutBlocking(t *testing.T) {
	h, m := newTestHub(t)
	slow := h.Subscribe(alice())
	fast := h.Subscribe(alice())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < DefaultBuffer+5; i++ {
			_ = h.BroadcastNewVideo(context.Background(), video("v"))
			<-fast.Events() // fast keeps up
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow listener")
	}

	assert.Len(t, slow.Events(), DefaultBuffer)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RealtimeEventsDroppedTotal))
}

func TestBroadcast_CancelledContext(t *testing.T) {
	h, _ := newTestHub(t)
	l := h.Subscribe(alice())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, h.BroadcastNewVideo(ctx, video("v1")), context.Canceled)
	assert.Len(t, l.Events(), 0)
}

func TestHub_ConcurrentSubscribeBroadcastUnsubscribe(t *testing.T) {
	h, _ := newTestHub(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l := h.Subscribe(alice())
			h.Unsubscribe(l)
		}()
		go func() {
			defer wg.Done()
			_ = h.BroadcastNewVideo(context.Background(), video("v"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, h.Count())
}
