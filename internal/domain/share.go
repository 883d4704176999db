package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareToken is a single-use, time-limited credential for forking a plan.
type ShareToken struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	Token     string              `bson:"token" json:"token"`
	PlanID    primitive.ObjectID  `bson:"planId" json:"plan_id"`
	CreatedBy primitive.ObjectID  `bson:"createdBy" json:"-"`
	ExpiresAt time.Time           `bson:"expiresAt" json:"expires_at"`
	UsedAt    *time.Time          `bson:"usedAt,omitempty" json:"used_at,omitempty"`
	UsedBy    *primitive.ObjectID `bson:"usedBy,omitempty" json:"-"`
	CreatedAt time.Time           `bson:"createdAt" json:"-"`
}

// Usable reports whether the token can still be previewed or accepted at now.
// Expiry is strict: a token is dead at ExpiresAt.
func (t *ShareToken) Usable(now time.Time) bool {
	return t != nil && t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// PlanExport records a plan snapshot written to object storage.
type PlanExport struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID    primitive.ObjectID `bson:"planId" json:"plan_id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"owner_id"`
	ObjectKey string             `bson:"objectKey" json:"-"`
	Size      int64              `bson:"size" json:"size"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
