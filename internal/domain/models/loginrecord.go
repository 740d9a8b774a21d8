// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord is an append-only record of a successful sign-in, kept
// for the account history view and abuse investigation.
type LoginRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	Provider  string             `bson:"provider" json:"provider"` // "password"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
