// internal/app/broker/client.go
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inkwell-live/inkwell/internal/app/system/auth"
	"github.com/inkwell-live/inkwell/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer. Chat and stroke payloads
	// are a few hundred bytes at most.
	maxFrameSize = 8192

	// Outbound buffer per connection. A member that falls this far
	// behind a room's traffic is kicked.
	sendBuffer = 256
)

// Client is one live connection, authenticated to exactly one user for
// its whole lifetime.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	user *auth.User

	send chan []byte
	quit chan struct{}
	once sync.Once

	mu    sync.Mutex
	rooms map[string]*room
}

func newClient(h *Hub, conn *websocket.Conn, user *auth.User) *Client {
	return &Client{
		hub:   h,
		conn:  conn,
		user:  user,
		send:  make(chan []byte, sendBuffer),
		quit:  make(chan struct{}),
		rooms: make(map[string]*room),
	}
}

// enqueue hands raw to the write pump without blocking. A false return
// means the buffer is full and the caller should kick this client.
func (c *Client) enqueue(raw []byte) bool {
	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

// kick asks the write pump to close the connection. Safe to call from
// any goroutine, any number of times.
func (c *Client) kick() {
	c.once.Do(func() { close(c.quit) })
}

// readPump pumps frames from the connection into the broker until the
// peer goes away, then tears down all of the client's memberships.
func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error",
					zap.String("user_id", c.user.ID),
					zap.Error(err))
			}
			return
		}
		c.handleFrame(raw)
	}
}

// writePump pumps broadcast frames out to the peer and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case raw := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

		case <-c.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame dispatches one inbound frame. Protocol errors answer
// with an ERROR diagnostic and keep the connection open.
func (c *Client) handleFrame(raw []byte) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		c.enqueue(errorFrame("malformed frame"))
		return
	}

	switch env.Type {
	case FrameSubscribe:
		c.subscribe(env.RoomID)

	case FrameUnsubscribe:
		c.unsubscribe(env.RoomID)

	case FrameChatMessage, FrameStroke:
		c.relayToRooms(raw)

	case FrameClearSlide:
		c.clearSlide(env.SessionID, raw)

	default:
		c.enqueue(errorFrame("unknown frame type: " + env.Type))
	}
}

// subscribe joins the room keyed by roomID after vetting that a
// session with that id exists. Re-subscribing to the same room is a
// no-op. Lifecycle state is not checked: clients may join a room while
// its session is still in the created state and wait for traffic.
func (c *Client) subscribe(roomID string) {
	if roomID == "" {
		c.enqueue(errorFrame("subscribe requires a roomId"))
		return
	}

	c.mu.Lock()
	_, already := c.rooms[roomID]
	c.mu.Unlock()
	if already {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	ok, err := c.hub.sessions.Exists(ctx, roomID)
	if err != nil {
		c.hub.log.Error("session lookup failed during subscribe",
			zap.String("room_id", roomID),
			zap.Error(err))
		c.enqueue(errorFrame("unable to verify session"))
		return
	}
	if !ok {
		c.enqueue(errorFrame("unknown session: " + roomID))
		return
	}

	rm := c.hub.reg.join(roomID, c)

	c.mu.Lock()
	c.rooms[roomID] = rm
	c.mu.Unlock()

	c.hub.log.Info("subscribed to room",
		zap.String("room_id", roomID),
		zap.String("user_id", c.user.ID))
}

func (c *Client) unsubscribe(roomID string) {
	c.mu.Lock()
	_, member := c.rooms[roomID]
	delete(c.rooms, roomID)
	c.mu.Unlock()
	if !member {
		return
	}

	c.hub.reg.remove(roomID, c)

	c.hub.log.Info("unsubscribed from room",
		zap.String("room_id", roomID),
		zap.String("user_id", c.user.ID))
}

// relayToRooms fans the original frame bytes out to every room this
// client is subscribed to.
func (c *Client) relayToRooms(raw []byte) {
	c.mu.Lock()
	targets := make([]*room, 0, len(c.rooms))
	for _, rm := range c.rooms {
		targets = append(targets, rm)
	}
	c.mu.Unlock()

	if len(targets) == 0 {
		c.enqueue(errorFrame("not subscribed to any room"))
		return
	}
	for _, rm := range targets {
		rm.broadcast(raw)
	}
}

// clearSlide fans the frame out to the room named by its sessionId
// field. The sender must itself be a member of that room.
func (c *Client) clearSlide(sessionID string, raw []byte) {
	if sessionID == "" {
		c.enqueue(errorFrame("clear requires a sessionId"))
		return
	}

	c.mu.Lock()
	rm, member := c.rooms[sessionID]
	c.mu.Unlock()
	if !member {
		c.enqueue(errorFrame("not subscribed to session: " + sessionID))
		return
	}
	rm.broadcast(raw)
}
