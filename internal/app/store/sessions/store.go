// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/inkwell-live/inkwell/internal/app/system/normalize"
	"github.com/inkwell-live/inkwell/internal/app/system/sessionid"
	"github.com/inkwell-live/inkwell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no session matches the id.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidState is returned when a lifecycle transition is not
	// legal from the session's current state.
	ErrInvalidState = errors.New("invalid session state for this transition")

	// ErrEmptyTitle is returned when a session is created without a
	// usable title.
	ErrEmptyTitle = errors.New("session title must not be empty")
)

// idAttempts bounds the collision-retry loop in Create. With a 26^9 id
// space, hitting this means the id generator is broken, not unlucky.
const idAttempts = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates the owner listing index. The _id index already
// guarantees session-id uniqueness.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_sessions_owner"),
	})
	return err
}

// Create inserts a new session in the created state with a fresh,
// collision-checked id.
func (s *Store) Create(ctx context.Context, ownerID, title string) (models.Session, error) {
	title = normalize.Title(title)
	if title == "" {
		return models.Session{}, ErrEmptyTitle
	}

	sess := models.Session{
		Title:     title,
		OwnerID:   ownerID,
		State:     models.SessionCreated,
		CreatedAt: time.Now().UTC(),
	}

	for attempt := 0; attempt < idAttempts; attempt++ {
		sess.ID = sessionid.New()
		_, err := s.c.InsertOne(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Session{}, err
		}
	}
	return models.Session{}, errors.New("session id space exhausted after retries")
}

// GetByID loads a session.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Exists reports whether a session with this id exists, regardless of
// lifecycle state. The broker uses it to vet SUBSCRIBE room ids.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByOwner returns the caller's sessions, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]models.SessionSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "title": 1})

	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	summaries := []models.SessionSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Start transitions created -> started. The update is a single
// FindOneAndUpdate conditioned on the current state, so concurrent
// starts on one session yield exactly one winner; every other caller
// gets ErrInvalidState (or ErrNotFound for an unknown id).
func (s *Store) Start(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionCreated, models.SessionStarted, "started_at")
}

// End transitions started -> ended. Ending a session that was never
// started (or already ended) is ErrInvalidState.
func (s *Store) End(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionStarted, models.SessionEnded, "ended_at")
}

func (s *Store) transition(ctx context.Context, id, from, to, stampField string) (*models.Session, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sess models.Session
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "state": from},
		bson.M{"$set": bson.M{"state": to, stampField: now}},
		opts,
	).Decode(&sess)

	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the id is unknown or the state check failed. A second
		// read disambiguates; the transition itself stayed atomic.
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
