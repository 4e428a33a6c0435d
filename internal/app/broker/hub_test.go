// internal/app/broker/hub_test.go
package broker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inkwell-live/inkwell/internal/app/broker"
	"github.com/inkwell-live/inkwell/internal/app/system/auth"
	"go.uber.org/zap"
)

// staticAuth admits any token present in its map. It stands in for the
// bearer-token middleware so these tests need no database.
type staticAuth map[string]*auth.User

func (a staticAuth) Authenticate(r *http.Request) (*auth.User, bool) {
	u, ok := a[r.URL.Query().Get("token")]
	return u, ok
}

// staticSessions answers Exists from a fixed set of session ids.
type staticSessions map[string]bool

func (s staticSessions) Exists(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

func newTestHub(t *testing.T, sessions staticSessions) (*broker.Hub, *httptest.Server) {
	t.Helper()
	authn := staticAuth{
		"tok-alice": {ID: "u-alice", Email: "alice@example.com", Username: "alice"},
		"tok-bob":   {ID: "u-bob", Email: "bob@example.com", Username: "bob"},
		"tok-carol": {ID: "u-carol", Email: "carol@example.com", Username: "carol"},
	}
	hub := broker.New(authn, sessions, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial with token %q: %v", token, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal frame %q: %v", raw, err)
	}
	return frame
}

func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, raw, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no frame, got %s", raw)
	}
}

func waitForMembers(t *testing.T, hub *broker.Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomMembers(sessionID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %s membership = %d, want %d", sessionID, hub.RoomMembers(sessionID), want)
}

func subscribe(t *testing.T, hub *broker.Hub, conn *websocket.Conn, sessionID string, want int) {
	t.Helper()
	send(t, conn, fmt.Sprintf(`{"type":"SUBSCRIBE","roomId":%q}`, sessionID))
	waitForMembers(t, hub, sessionID, want)
}

func TestServeWS_RejectsInvalidToken(t *testing.T) {
	_, srv := newTestHub(t, staticSessions{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=forged"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail for an invalid token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, want 401", resp)
	}
}

func TestServeWS_RejectsMissingToken(t *testing.T) {
	_, srv := newTestHub(t, staticSessions{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, want 401", resp)
	}
}

func TestSubscribe_UnknownSessionGetsError(t *testing.T) {
	_, srv := newTestHub(t, staticSessions{})

	conn := dial(t, srv, "tok-alice")
	send(t, conn, `{"type":"SUBSCRIBE","roomId":"zzz-zzz-zzz"}`)

	frame := readFrame(t, conn)
	if frame["type"] != "ERROR" {
		t.Errorf("frame type = %v, want ERROR", frame["type"])
	}
}

func TestStroke_FanOutIncludesSender(t *testing.T) {
	const room = "abc-def-ghi"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	bob := dial(t, srv, "tok-bob")
	carol := dial(t, srv, "tok-carol")

	subscribe(t, hub, alice, room, 1)
	subscribe(t, hub, bob, room, 2)
	subscribe(t, hub, carol, room, 3)

	send(t, alice, `{"type":"STROKE","x":200,"y":250,"color":"#ff0000","size":3}`)

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob, "carol": carol} {
		frame := readFrame(t, conn)
		if frame["type"] != "STROKE" {
			t.Errorf("%s: frame type = %v, want STROKE", name, frame["type"])
		}
		if frame["x"] != float64(200) || frame["y"] != float64(250) {
			t.Errorf("%s: coordinates = (%v, %v), want (200, 250)", name, frame["x"], frame["y"])
		}
		if frame["color"] != "#ff0000" {
			t.Errorf("%s: color = %v, want #ff0000", name, frame["color"])
		}
		if frame["size"] != float64(3) {
			t.Errorf("%s: size = %v, want 3", name, frame["size"])
		}
	}
}

func TestChatMessage_Broadcast(t *testing.T) {
	const room = "aaa-bbb-ccc"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	bob := dial(t, srv, "tok-bob")

	subscribe(t, hub, alice, room, 1)
	subscribe(t, hub, bob, room, 2)

	send(t, alice, `{"type":"CHAT_MESSAGE","message":"hello room"}`)

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		frame := readFrame(t, conn)
		if frame["type"] != "CHAT_MESSAGE" {
			t.Errorf("%s: frame type = %v, want CHAT_MESSAGE", name, frame["type"])
		}
		if frame["message"] != "hello room" {
			t.Errorf("%s: message = %v, want %q", name, frame["message"], "hello room")
		}
	}
}

func TestClearSlide_EchoesSessionID(t *testing.T) {
	const room = "xyz-uvw-rst"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	bob := dial(t, srv, "tok-bob")

	subscribe(t, hub, alice, room, 1)
	subscribe(t, hub, bob, room, 2)

	send(t, alice, fmt.Sprintf(`{"type":"CLEAR_SLIDE","sessionId":%q}`, room))

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		frame := readFrame(t, conn)
		if frame["type"] != "CLEAR_SLIDE" {
			t.Errorf("%s: frame type = %v, want CLEAR_SLIDE", name, frame["type"])
		}
		if frame["sessionId"] != room {
			t.Errorf("%s: sessionId = %v, want %q", name, frame["sessionId"], room)
		}
	}
}

func TestClearSlide_RequiresMembership(t *testing.T) {
	const room = "mno-pqr-stu"
	_, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	send(t, alice, fmt.Sprintf(`{"type":"CLEAR_SLIDE","sessionId":%q}`, room))

	frame := readFrame(t, alice)
	if frame["type"] != "ERROR" {
		t.Errorf("frame type = %v, want ERROR", frame["type"])
	}
}

func TestPerSenderFIFO(t *testing.T) {
	const room = "fif-ooo-rdr"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	bob := dial(t, srv, "tok-bob")

	subscribe(t, hub, alice, room, 1)
	subscribe(t, hub, bob, room, 2)

	const n = 20
	for i := 0; i < n; i++ {
		send(t, alice, fmt.Sprintf(`{"type":"CHAT_MESSAGE","message":"%d"}`, i))
	}

	for i := 0; i < n; i++ {
		frame := readFrame(t, bob)
		if frame["message"] != fmt.Sprintf("%d", i) {
			t.Fatalf("frame %d: message = %v, out of order", i, frame["message"])
		}
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	const room = "uns-ubb-edd"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	bob := dial(t, srv, "tok-bob")

	subscribe(t, hub, alice, room, 1)
	subscribe(t, hub, bob, room, 2)

	send(t, bob, fmt.Sprintf(`{"type":"UNSUBSCRIBE","roomId":%q}`, room))
	waitForMembers(t, hub, room, 1)

	send(t, alice, `{"type":"CHAT_MESSAGE","message":"after unsubscribe"}`)

	if frame := readFrame(t, alice); frame["message"] != "after unsubscribe" {
		t.Errorf("sender self-echo message = %v", frame["message"])
	}
	expectNoFrame(t, bob)
}

func TestResubscribe_IsIdempotent(t *testing.T) {
	const room = "dup-lic-ate"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")

	subscribe(t, hub, alice, room, 1)
	send(t, alice, fmt.Sprintf(`{"type":"SUBSCRIBE","roomId":%q}`, room))
	// Give the duplicate subscribe time to be processed.
	time.Sleep(50 * time.Millisecond)
	if got := hub.RoomMembers(room); got != 1 {
		t.Fatalf("membership after duplicate subscribe = %d, want 1", got)
	}

	send(t, alice, `{"type":"CHAT_MESSAGE","message":"once"}`)
	if frame := readFrame(t, alice); frame["message"] != "once" {
		t.Fatalf("message = %v, want %q", frame["message"], "once")
	}
	expectNoFrame(t, alice)
}

func TestUnknownFrameType_KeepsConnectionOpen(t *testing.T) {
	const room = "sti-lla-liv"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")

	send(t, alice, `{"type":"BOGUS"}`)
	if frame := readFrame(t, alice); frame["type"] != "ERROR" {
		t.Fatalf("frame type = %v, want ERROR", frame["type"])
	}

	send(t, alice, `not even json`)
	if frame := readFrame(t, alice); frame["type"] != "ERROR" {
		t.Fatalf("frame type = %v, want ERROR", frame["type"])
	}

	// The connection survives both bad frames.
	subscribe(t, hub, alice, room, 1)
	send(t, alice, `{"type":"CHAT_MESSAGE","message":"still here"}`)
	if frame := readFrame(t, alice); frame["message"] != "still here" {
		t.Errorf("message = %v, want %q", frame["message"], "still here")
	}
}

func TestDisconnect_ReleasesMembership(t *testing.T) {
	const room = "bye-bye-now"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	bob := dial(t, srv, "tok-bob")

	subscribe(t, hub, alice, room, 1)
	subscribe(t, hub, bob, room, 2)

	_ = bob.Close()
	waitForMembers(t, hub, room, 1)

	// Broadcast after the disconnect still works for the remaining
	// member.
	send(t, alice, `{"type":"CHAT_MESSAGE","message":"anyone there"}`)
	if frame := readFrame(t, alice); frame["message"] != "anyone there" {
		t.Errorf("message = %v", frame["message"])
	}
}

func TestSendWithoutSubscription_GetsError(t *testing.T) {
	_, srv := newTestHub(t, staticSessions{})

	alice := dial(t, srv, "tok-alice")
	send(t, alice, `{"type":"STROKE","x":1,"y":2,"color":"#000000","size":1}`)

	if frame := readFrame(t, alice); frame["type"] != "ERROR" {
		t.Errorf("frame type = %v, want ERROR", frame["type"])
	}
}

func TestShutdown_ClosesConnections(t *testing.T) {
	const room = "gra-cef-ull"
	hub, srv := newTestHub(t, staticSessions{room: true})

	alice := dial(t, srv, "tok-alice")
	subscribe(t, hub, alice, room, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	_ = alice.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := alice.ReadMessage(); err != nil {
			break
		}
	}
}
