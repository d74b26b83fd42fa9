package inspect

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/reago-dev/reago/pkg/state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The inspector is a local development tool, not an internet-facing
	// surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	liveWriteTimeout = 5 * time.Second
	livePingInterval = 30 * time.Second

	// liveQueueSize bounds pending snapshots per stream. A slow consumer
	// skips intermediate states rather than stalling the unit's watchers.
	liveQueueSize = 16
)

// handleLive upgrades to a WebSocket and streams unit snapshots on every
// observed change. The first message is always the current snapshot.
// Consecutive states with identical digests are suppressed.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	u, ok := s.registry.Lookup(name)
	if !ok {
		http.Error(w, "unknown unit "+name, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("live upgrade failed", "unit", name, "error", err)
		return
	}

	stream := newLiveStream(u, name)
	defer stream.close()

	s.logger.Info("live stream opened", "unit", name)
	defer s.logger.Info("live stream closed", "unit", name)

	// Reader goroutine: the stream is write-only, but the close handshake
	// still needs the read side serviced.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case snap, ok := <-stream.updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure) {
					s.logger.Error("live write error", "unit", name, "error", err)
				}
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// liveStream adapts a unit's deep watches to a snapshot channel.
type liveStream struct {
	updates chan UnitSnapshot
	unwatch []state.Unwatch

	mu         sync.Mutex
	lastDigest string
}

// newLiveStream subscribes deep watches over the unit's storage objects
// and queues digest-deduplicated snapshots, starting with the current
// state.
func newLiveStream(u *state.Unit, name string) *liveStream {
	ls := &liveStream{updates: make(chan UnitSnapshot, liveQueueSize)}

	push := func() {
		snap := Snapshot(name, u)
		ls.mu.Lock()
		defer ls.mu.Unlock()
		if snap.Digest == ls.lastDigest {
			return
		}
		ls.lastDigest = snap.Digest
		select {
		case ls.updates <- snap:
		default:
			// Queue full: drop this state, a later one supersedes it.
		}
	}

	push()

	// Deep watches over the storage objects themselves; traversal
	// subscribes every nested tracked property.
	onChange := func(_ *state.Unit, _, _ any) { push() }
	opts := &state.WatchOptions{Deep: true}
	ls.unwatch = append(ls.unwatch,
		u.Watch(func(u *state.Unit) any { return u.DataStore() }, onChange, opts),
		u.Watch(func(u *state.Unit) any { return u.PropsStore() }, onChange, opts),
	)
	return ls
}

// close tears down the stream's watches.
func (ls *liveStream) close() {
	for _, stop := range ls.unwatch {
		stop()
	}
}
