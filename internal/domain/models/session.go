// internal/domain/models/session.go
package models

import "time"

// Session lifecycle states. Transitions are strictly monotonic:
// created -> started -> ended, with no re-entry and no skipped edges.
const (
	SessionCreated = "created"
	SessionStarted = "started"
	SessionEnded   = "ended"
)

// Session is a collaborative drawing session ("room").
//
// The document _id is the public session id in the xxx-xxx-xxx form
// (three lowercase alphabetic groups joined by hyphens). It doubles as
// the room key the connection broker groups subscribers under.
type Session struct {
	ID      string `bson:"_id" json:"sessionId"`
	Title   string `bson:"title" json:"title"`
	OwnerID string `bson:"owner_id" json:"ownerId"`
	State   string `bson:"state" json:"state"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	StartedAt *time.Time `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"endedAt,omitempty"`
}

// CanStart reports whether the session may transition to started.
func (s *Session) CanStart() bool { return s.State == SessionCreated }

// CanEnd reports whether the session may transition to ended.
// A session that was never started cannot be ended.
func (s *Session) CanEnd() bool { return s.State == SessionStarted }

// SessionSummary is the listing projection returned by the sessions API.
type SessionSummary struct {
	ID    string `bson:"_id" json:"sessionId"`
	Title string `bson:"title" json:"title"`
}
