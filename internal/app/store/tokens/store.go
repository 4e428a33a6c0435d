// internal/app/store/tokens/store.go
package tokens

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no live token matches the digest.
var ErrNotFound = errors.New("token not found")

// Record is one issued bearer token. Only the SHA-256 digest of the
// token is stored; the opaque value itself exists nowhere but in the
// client's hands.
type Record struct {
	Digest    string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	IssuedAt  time.Time `bson:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tokens")}
}

// EnsureIndexes creates the TTL index so Mongo reaps expired tokens on
// its own; Lookup still checks expiry because the reaper is lazy.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_tokens_ttl"),
	})
	return err
}

// Insert stores a freshly issued token record.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Lookup resolves a digest to its record. Expired records are treated
// as absent even if the TTL monitor has not removed them yet.
func (s *Store) Lookup(ctx context.Context, digest string) (*Record, error) {
	var rec Record
	err := s.c.FindOne(ctx, bson.M{"_id": digest}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Delete revokes a token by digest. Deleting an unknown digest is not
// an error.
func (s *Store) Delete(ctx context.Context, digest string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": digest})
	return err
}
