// internal/domain/plan.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DaysPerWeek is the fixed length of a plan cycle.
const DaysPerWeek = 7

// DayType classifies a plan day.
type DayType string

const (
	DayTypeUpper DayType = "upper"
	DayTypeLower DayType = "lower"
	DayTypeHIIT  DayType = "hiit"
	DayTypeFull  DayType = "full"
	DayTypeRest  DayType = "rest"
)

// Valid reports whether t is one of the known day types.
func (t DayType) Valid() bool {
	switch t {
	case DayTypeUpper, DayTypeLower, DayTypeHIIT, DayTypeFull, DayTypeRest:
		return true
	}
	return false
}

// ValidDayNumber reports whether n addresses a day inside the weekly cycle.
func ValidDayNumber(n int) bool {
	return n >= 1 && n <= DaysPerWeek
}

// Plan is a named 7-day workout template owned by exactly one user.
type Plan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       primitive.ObjectID `bson:"ownerId" json:"owner_id"`
	Name          string             `bson:"name" json:"name"`
	EquipmentTags []string           `bson:"equipmentTags" json:"equipment_tags"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the plan.
func (p *Plan) IsOwnedBy(userID primitive.ObjectID) bool {
	return p != nil && p.OwnerID == userID
}

// PlanDay is one day of a plan. DayNumber is unique within the plan.
type PlanDay struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID        primitive.ObjectID `bson:"planId" json:"plan_id"`
	DayNumber     int                `bson:"dayNumber" json:"day_number"`
	Type          DayType            `bson:"type" json:"type"`
	Name          string             `bson:"name" json:"name"`
	Duration      string             `bson:"duration" json:"duration"`
	RestContent   *string            `bson:"restContent,omitempty" json:"rest_content,omitempty"`
	HIITStructure *string            `bson:"hiitStructure,omitempty" json:"hiit_structure,omitempty"`
	HIITNote      *string            `bson:"hiitNote,omitempty" json:"hiit_note,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

// NormalizeTags trims, drops empties and removes duplicates while keeping
// first-seen order. Equipment tags behave as a set.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
