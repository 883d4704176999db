package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserPlan binds a user to the active plan. There is one per user.
type UserPlan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"user_id"`
	PlanID          primitive.ObjectID `bson:"planId" json:"plan_id"`
	CurrentDayIndex int                `bson:"currentDayIndex" json:"current_day_index"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updated_at"`
}

// NextDayIndex wraps the weekly pointer: 1..6 advance by one, 7 returns to 1.
func NextDayIndex(current int) int {
	return (current % DaysPerWeek) + 1
}

// CompletionState is derived from CompletedAt.
type CompletionState string

const (
	CompletionInProgress CompletionState = "in_progress"
	CompletionFinalized  CompletionState = "finalized"
)

// Completion is the checklist of one day inside a user plan. A nil
// CompletedAt means the completion is still in progress.
type Completion struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserPlanID  primitive.ObjectID   `bson:"userPlanId" json:"user_plan_id"`
	DayNumber   int                  `bson:"dayNumber" json:"day_number"`
	CompletedAt *time.Time           `bson:"completedAt,omitempty" json:"completed_at"`
	ExerciseIDs []primitive.ObjectID `bson:"exerciseIds" json:"completed_exercise_ids"`
	CreatedAt   time.Time            `bson:"createdAt" json:"created_at"`
}

func (c *Completion) State() CompletionState {
	if c.CompletedAt == nil {
		return CompletionInProgress
	}
	return CompletionFinalized
}

// HasExercise reports whether id is on the checklist.
func (c *Completion) HasExercise(id primitive.ObjectID) bool {
	for _, e := range c.ExerciseIDs {
		if e == id {
			return true
		}
	}
	return false
}
