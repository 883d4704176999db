package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type planRepository struct{ s *Store }

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires ownerId and name")
	}
	defer r.s.lock(ctx)()

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	plan.EquipmentTags = append([]string{}, plan.EquipmentTags...)
	r.s.data.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *planRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.data.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.EquipmentTags = append([]string{}, p.EquipmentTags...)
	return &p, nil
}

func (r *planRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Plan, error) {
	defer r.s.lock(ctx)()
	plans := []domain.Plan{}
	for _, p := range r.s.data.plans {
		if p.OwnerID == ownerID {
			p.EquipmentTags = append([]string{}, p.EquipmentTags...)
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].CreatedAt.Equal(plans[j].CreatedAt) {
			return plans[i].ID.Hex() > plans[j].ID.Hex()
		}
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.data.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	plan.UpdatedAt = time.Now().UTC()
	stored.Name = plan.Name
	stored.EquipmentTags = append([]string{}, plan.EquipmentTags...)
	stored.UpdatedAt = plan.UpdatedAt
	r.s.data.plans[plan.ID] = stored
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.plans, id)
	return nil
}

type planDayRepository struct{ s *Store }

func (r *planDayRepository) Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	if day.PlanID == primitive.NilObjectID || !domain.ValidDayNumber(day.DayNumber) {
		return primitive.NilObjectID, errors.New("plan day requires planId and a day number between 1 and 7")
	}
	defer r.s.lock(ctx)()

	for _, d := range r.s.data.planDays {
		if d.PlanID == day.PlanID && d.DayNumber == day.DayNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	day.ID = primitive.NewObjectID()
	day.CreatedAt = time.Now().UTC()
	r.s.data.planDays[day.ID] = *day
	return day.ID, nil
}

func (r *planDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanDay, error) {
	defer r.s.lock(ctx)()
	d, ok := r.s.data.planDays[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *planDayRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	defer r.s.lock(ctx)()
	days := []domain.PlanDay{}
	for _, d := range r.s.data.planDays {
		if d.PlanID == planID {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days, nil
}

func (r *planDayRepository) Update(ctx context.Context, day *domain.PlanDay) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.data.planDays[day.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Type = day.Type
	stored.Name = day.Name
	stored.Duration = day.Duration
	stored.RestContent = day.RestContent
	stored.HIITStructure = day.HIITStructure
	stored.HIITNote = day.HIITNote
	r.s.data.planDays[day.ID] = stored
	return nil
}

func (r *planDayRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	for id, d := range r.s.data.planDays {
		if d.PlanID == planID {
			delete(r.s.data.planDays, id)
		}
	}
	return nil
}

type dayExerciseRepository struct{ s *Store }

func (r *dayExerciseRepository) Create(ctx context.Context, exercise *domain.DayExercise) (primitive.ObjectID, error) {
	if exercise.PlanDayID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day exercise requires planDayId")
	}
	if err := exercise.Ref.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	defer r.s.lock(ctx)()

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.data.dayExercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *dayExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DayExercise, error) {
	defer r.s.lock(ctx)()
	e, ok := r.s.data.dayExercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *dayExerciseRepository) GetByPlanDayIDs(ctx context.Context, planDayIDs []primitive.ObjectID) ([]domain.DayExercise, error) {
	defer r.s.lock(ctx)()
	want := idSet(planDayIDs)
	exercises := []domain.DayExercise{}
	for _, e := range r.s.data.dayExercises {
		if _, ok := want[e.PlanDayID]; ok {
			exercises = append(exercises, e)
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		if exercises[i].SortOrder == exercises[j].SortOrder {
			return exercises[i].ID.Hex() < exercises[j].ID.Hex()
		}
		return exercises[i].SortOrder < exercises[j].SortOrder
	})
	return exercises, nil
}

func (r *dayExerciseRepository) Update(ctx context.Context, exercise *domain.DayExercise) error {
	if err := exercise.Ref.Validate(); err != nil {
		return err
	}
	defer r.s.lock(ctx)()
	stored, ok := r.s.data.dayExercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	exercise.PlanDayID = stored.PlanDayID
	exercise.CreatedAt = stored.CreatedAt
	exercise.UpdatedAt = time.Now().UTC()
	r.s.data.dayExercises[exercise.ID] = *exercise
	return nil
}

func (r *dayExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.dayExercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.dayExercises, id)
	return nil
}

func (r *dayExerciseRepository) DeleteByPlanDayIDs(ctx context.Context, planDayIDs []primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	want := idSet(planDayIDs)
	for id, e := range r.s.data.dayExercises {
		if _, ok := want[e.PlanDayID]; ok {
			delete(r.s.data.dayExercises, id)
		}
	}
	return nil
}
