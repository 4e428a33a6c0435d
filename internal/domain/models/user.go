// internal/domain/models/user.go
package models

import "time"

// User is an account identity created at signup.
//
// NOTE:
//   - The document _id is a UUID string, not an ObjectID, so the same
//     value can be handed to API clients as the public userId.
//   - Email is stored normalized (lowercase, trimmed) and carries a
//     unique index; EmailCI-style shadow fields are unnecessary because
//     normalization happens before every write and lookup.
type User struct {
	ID           string `bson:"_id" json:"userId"`
	Email        string `bson:"email" json:"email"`
	Username     string `bson:"username" json:"username"`
	PasswordHash string `bson:"password_hash" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
