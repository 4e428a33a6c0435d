// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-live/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given password hashed at the
// minimum bcrypt cost to keep tests fast.
func (f *Fixtures) CreateUser(ctx context.Context, email, username, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateSession inserts a session owned by ownerID in the given state.
func (f *Fixtures) CreateSession(ctx context.Context, id, title, ownerID, state string) models.Session {
	f.t.Helper()

	now := time.Now().UTC()
	sess := models.Session{
		ID:        id,
		Title:     title,
		OwnerID:   ownerID,
		State:     state,
		CreatedAt: now,
	}
	switch state {
	case models.SessionStarted:
		sess.StartedAt = &now
	case models.SessionEnded:
		sess.StartedAt = &now
		sess.EndedAt = &now
	}

	if _, err := f.db.Collection("sessions").InsertOne(ctx, sess); err != nil {
		f.t.Fatalf("failed to create test session: %v", err)
	}
	return sess
}
