package memory

import (
	"context"
	"sort"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userPlanRepository struct{ s *Store }

func (r *userPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error) {
	defer r.s.lock(ctx)()
	up, ok := r.s.data.userPlans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &up, nil
}

func (r *userPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserPlan, error) {
	defer r.s.lock(ctx)()
	if up, ok := r.byUser(userID); ok {
		return &up, nil
	}
	return nil, repository.ErrNotFound
}

func (r *userPlanRepository) byUser(userID primitive.ObjectID) (domain.UserPlan, bool) {
	for _, up := range r.s.data.userPlans {
		if up.UserID == userID {
			return up, true
		}
	}
	return domain.UserPlan{}, false
}

func (r *userPlanRepository) Upsert(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error) {
	defer r.s.lock(ctx)()
	now := time.Now().UTC()
	up, ok := r.byUser(userID)
	if !ok {
		up = domain.UserPlan{ID: primitive.NewObjectID(), UserID: userID, CreatedAt: now}
	}
	up.PlanID = planID
	up.CurrentDayIndex = 1
	up.UpdatedAt = now
	r.s.data.userPlans[up.ID] = up
	return &up, nil
}

func (r *userPlanRepository) AdvanceDay(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error) {
	defer r.s.lock(ctx)()
	up, ok := r.s.data.userPlans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	up.CurrentDayIndex = domain.NextDayIndex(up.CurrentDayIndex)
	up.UpdatedAt = time.Now().UTC()
	r.s.data.userPlans[id] = up
	return &up, nil
}

type completionRepository struct{ s *Store }

// open returns the in-progress completion. Callers hold the lock.
func (r *completionRepository) open(userPlanID primitive.ObjectID, dayNumber int) (domain.Completion, bool) {
	for _, c := range r.s.data.completions {
		if c.UserPlanID == userPlanID && c.DayNumber == dayNumber && c.CompletedAt == nil {
			return c, true
		}
	}
	return domain.Completion{}, false
}

func (r *completionRepository) AddExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) (*domain.Completion, error) {
	defer r.s.lock(ctx)()
	c, ok := r.open(userPlanID, dayNumber)
	if !ok {
		c = domain.Completion{
			ID:         primitive.NewObjectID(),
			UserPlanID: userPlanID,
			DayNumber:  dayNumber,
			CreatedAt:  time.Now().UTC(),
		}
	}
	if !c.HasExercise(dayExerciseID) {
		ids := make([]primitive.ObjectID, 0, len(c.ExerciseIDs)+1)
		c.ExerciseIDs = append(append(ids, c.ExerciseIDs...), dayExerciseID)
	}
	r.s.data.completions[c.ID] = c
	return &c, nil
}

func (r *completionRepository) RemoveExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	c, ok := r.open(userPlanID, dayNumber)
	if !ok {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(c.ExerciseIDs))
	for _, id := range c.ExerciseIDs {
		if id != dayExerciseID {
			ids = append(ids, id)
		}
	}
	c.ExerciseIDs = ids
	r.s.data.completions[c.ID] = c
	return nil
}

func (r *completionRepository) Finalize(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, at time.Time) (*domain.Completion, error) {
	defer r.s.lock(ctx)()
	at = at.UTC()
	c, ok := r.open(userPlanID, dayNumber)
	if !ok {
		c = domain.Completion{
			ID:          primitive.NewObjectID(),
			UserPlanID:  userPlanID,
			DayNumber:   dayNumber,
			ExerciseIDs: []primitive.ObjectID{},
			CreatedAt:   at,
		}
	}
	c.CompletedAt = &at
	r.s.data.completions[c.ID] = c
	return &c, nil
}

func (r *completionRepository) GetByUserPlanID(ctx context.Context, userPlanID primitive.ObjectID) ([]domain.Completion, error) {
	defer r.s.lock(ctx)()
	completions := []domain.Completion{}
	for _, c := range r.s.data.completions {
		if c.UserPlanID == userPlanID {
			c.ExerciseIDs = append([]primitive.ObjectID{}, c.ExerciseIDs...)
			completions = append(completions, c)
		}
	}
	sort.Slice(completions, func(i, j int) bool {
		a, b := completions[i], completions[j]
		if (a.CompletedAt == nil) != (b.CompletedAt == nil) {
			return a.CompletedAt == nil
		}
		if a.CompletedAt != nil && !a.CompletedAt.Equal(*b.CompletedAt) {
			return a.CompletedAt.After(*b.CompletedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	})
	return completions, nil
}
