// internal/app/broker/frames.go
package broker

import "encoding/json"

// Frame types accepted from clients. This is a closed set: dispatch in
// Client.handleFrame switches over exactly these values and anything
// else gets an ERROR diagnostic back, never a disconnect.
const (
	FrameSubscribe   = "SUBSCRIBE"
	FrameUnsubscribe = "UNSUBSCRIBE"
	FrameChatMessage = "CHAT_MESSAGE"
	FrameStroke      = "STROKE"
	FrameClearSlide  = "CLEAR_SLIDE"

	// FrameError is outbound-only.
	FrameError = "ERROR"
)

// envelope is the routing view of an inbound frame. Broadcast frames
// are relayed from the original raw bytes so every payload field
// reaches every room member byte-identical; the envelope only steers
// dispatch.
type envelope struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
}

func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	err := json.Unmarshal(raw, &env)
	return env, err
}

type errorFramePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// errorFrame builds the diagnostic frame sent back to a misbehaving
// sender.
func errorFrame(msg string) []byte {
	b, _ := json.Marshal(errorFramePayload{Type: FrameError, Message: msg})
	return b
}
