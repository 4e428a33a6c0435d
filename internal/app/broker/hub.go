// internal/app/broker/hub.go
// Package broker multiplexes authenticated websocket connections into
// rooms keyed by session id and fans frames out to every room member,
// including the sender.
package broker

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/inkwell-live/inkwell/internal/app/system/apierr"
	"github.com/inkwell-live/inkwell/internal/app/system/auth"
	"github.com/inkwell-live/inkwell/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Authenticator resolves the user behind an upgrade request. A false
// return rejects the connection before any room traffic is processed.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.User, bool)
}

// SessionChecker reports whether a session id names a real session.
// Subscribes to unknown ids are refused so room keys cannot be
// invented by clients.
type SessionChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Hub owns the room registry and the set of live connections.
type Hub struct {
	log      *zap.Logger
	auth     Authenticator
	sessions SessionChecker
	api      *apierr.Logger
	upgrader websocket.Upgrader
	reg      *registry

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func New(authn Authenticator, sessions SessionChecker, log *zap.Logger) *Hub {
	return &Hub{
		log:      log,
		auth:     authn,
		sessions: sessions,
		api:      apierr.NewLogger(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bearer token is the credential; browser and
			// non-browser clients connect from any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		reg:     newRegistry(),
		clients: make(map[*Client]struct{}),
	}
}

// ServeWS handles GET /ws. The token is checked before the upgrade so
// an unauthenticated caller gets a plain 401 response rather than a
// dropped socket.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, ok := h.auth.Authenticate(r)
	if !ok {
		h.api.Unauthenticated(w, "invalid or missing token")
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		httpjson.Write(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
		return
	}
	h.mu.Unlock()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the handshake error.
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(h, conn, user)
	if !h.track(c) {
		// Shutdown began after the handshake; this connection was never
		// in the snapshot Shutdown kicks, so close it here.
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"))
		_ = conn.Close()
		return
	}

	h.log.Info("connection opened", zap.String("user_id", user.ID))

	go c.writePump()
	go c.readPump()
}

// track registers a connection with the hub. A false return means
// shutdown started after the upgrade handshake and the caller must
// close the connection instead of starting its pumps.
func (h *Hub) track(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	return true
}

// disconnect releases everything a closing connection holds: its spot
// in every room it joined and its entry in the client set. Runs from
// the client's read pump on the way out; must be safe against an
// in-flight broadcast to the same rooms.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	_, tracked := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	c.mu.Lock()
	joined := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		joined = append(joined, id)
	}
	c.rooms = make(map[string]*room)
	c.mu.Unlock()

	for _, id := range joined {
		h.reg.remove(id, c)
	}
	c.kick()

	if tracked {
		h.log.Info("connection closed", zap.String("user_id", c.user.ID))
		h.wg.Done()
	}
}

// RoomMembers reports the current size of a room's membership set.
func (h *Hub) RoomMembers(sessionID string) int {
	return h.reg.memberCount(sessionID)
}

// Shutdown refuses new connections, closes every live one, and waits
// for their pumps to drain or the context to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	live := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		live = append(live, c)
	}
	h.mu.Unlock()

	for _, c := range live {
		c.kick()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
