package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account able to own plans.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never exposed
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updated_at"`
}
