package service

import (
	"context"
	"errors"
	"fmt"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/plantemplate"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayDetail is a plan day with its exercises in sort order.
type DayDetail struct {
	Day       domain.PlanDay
	Exercises []ResolvedExercise
}

// PlanDetail is a whole plan tree with resolved exercise names.
type PlanDetail struct {
	Plan domain.Plan
	Days []DayDetail
}

// dayBlueprint is a day and its exercises before they are stored.
type dayBlueprint struct {
	day       domain.PlanDay
	exercises []domain.DayExercise
}

// planTree reads, writes and authorizes plan -> day -> exercise trees. It
// is shared by the plan, tracker and share services.
type planTree struct {
	plans     repository.PlanRepository
	days      repository.PlanDayRepository
	exercises repository.DayExerciseRepository
	resolver  *ExerciseNameResolver
}

func newPlanTree(repos *repository.Repositories, resolver *ExerciseNameResolver) *planTree {
	return &planTree{
		plans:     repos.Plans,
		days:      repos.PlanDays,
		exercises: repos.DayExercises,
		resolver:  resolver,
	}
}

// ownedPlan loads a plan the user owns. Plans of other users are reported
// as missing.
func (t *planTree) ownedPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := t.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if !plan.IsOwnedBy(userID) {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// ownedDay walks day -> plan -> owner.
func (t *planTree) ownedDay(ctx context.Context, userID, dayID primitive.ObjectID) (*domain.PlanDay, error) {
	day, err := t.days.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanDayNotFound
		}
		return nil, fmt.Errorf("get plan day: %w", err)
	}
	plan, err := t.plans.GetByID(ctx, day.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanDayNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if !plan.IsOwnedBy(userID) {
		return nil, ErrNotPlanOwner
	}
	return day, nil
}

// ownedExercise walks exercise -> day -> plan -> owner.
func (t *planTree) ownedExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.DayExercise, *domain.PlanDay, error) {
	exercise, err := t.exercises.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrDayExerciseNotFound
		}
		return nil, nil, fmt.Errorf("get day exercise: %w", err)
	}
	day, err := t.ownedDay(ctx, userID, exercise.PlanDayID)
	if err != nil {
		return nil, nil, err
	}
	return exercise, day, nil
}

// contents loads the days of a plan and all of their exercises with two
// queries.
func (t *planTree) contents(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, []domain.DayExercise, error) {
	days, err := t.days.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, nil, fmt.Errorf("get plan days: %w", err)
	}
	dayIDs := make([]primitive.ObjectID, len(days))
	for i, d := range days {
		dayIDs[i] = d.ID
	}
	exercises, err := t.exercises.GetByPlanDayIDs(ctx, dayIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get day exercises: %w", err)
	}
	return days, exercises, nil
}

// detail assembles the plan tree and resolves every exercise name in one
// batch.
func (t *planTree) detail(ctx context.Context, plan *domain.Plan) (*PlanDetail, error) {
	days, exercises, err := t.contents(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	resolved, err := t.resolver.Resolve(ctx, exercises)
	if err != nil {
		return nil, err
	}

	byDay := make(map[primitive.ObjectID][]ResolvedExercise, len(days))
	for _, e := range resolved {
		byDay[e.PlanDayID] = append(byDay[e.PlanDayID], e)
	}
	detail := &PlanDetail{Plan: *plan, Days: make([]DayDetail, len(days))}
	for i, d := range days {
		exs := byDay[d.ID]
		if exs == nil {
			exs = []ResolvedExercise{}
		}
		detail.Days[i] = DayDetail{Day: d, Exercises: exs}
	}
	return detail, nil
}

// create stores a plan owned by ownerID and then each day with its
// exercises. Ids and timestamps in the blueprints are replaced.
func (t *planTree) create(ctx context.Context, ownerID primitive.ObjectID, name string, tags []string, blueprints []dayBlueprint) (*domain.Plan, error) {
	plan := &domain.Plan{
		OwnerID:       ownerID,
		Name:          name,
		EquipmentTags: domain.NormalizeTags(tags),
	}
	if _, err := t.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	for _, bp := range blueprints {
		day := bp.day
		day.PlanID = plan.ID
		if _, err := t.days.Create(ctx, &day); err != nil {
			return plan, fmt.Errorf("create plan day %d: %w", day.DayNumber, err)
		}
		for _, e := range bp.exercises {
			e.PlanDayID = day.ID
			if _, err := t.exercises.Create(ctx, &e); err != nil {
				return plan, fmt.Errorf("create exercise for day %d: %w", day.DayNumber, err)
			}
		}
	}
	return plan, nil
}

// remove deletes a plan tree children first, so an interrupted delete never
// leaves exercises without a day.
func (t *planTree) remove(ctx context.Context, planID primitive.ObjectID) error {
	days, err := t.days.GetByPlanID(ctx, planID)
	if err != nil {
		return fmt.Errorf("get plan days: %w", err)
	}
	dayIDs := make([]primitive.ObjectID, len(days))
	for i, d := range days {
		dayIDs[i] = d.ID
	}
	if err := t.exercises.DeleteByPlanDayIDs(ctx, dayIDs); err != nil {
		return fmt.Errorf("delete day exercises: %w", err)
	}
	if err := t.days.DeleteByPlanID(ctx, planID); err != nil {
		return fmt.Errorf("delete plan days: %w", err)
	}
	if err := t.plans.Delete(ctx, planID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// templateBlueprints flattens the template's sections into ordered day
// exercises. Template exercises are custom exercises.
func templateBlueprints(tpl plantemplate.Plan) []dayBlueprint {
	blueprints := make([]dayBlueprint, 0, len(tpl.Days))
	for _, d := range tpl.Days {
		bp := dayBlueprint{day: domain.PlanDay{
			DayNumber:     d.DayNumber,
			Type:          d.Type,
			Name:          d.Name,
			Duration:      d.Duration,
			RestContent:   optionalString(d.RestContent),
			HIITStructure: optionalString(d.HIITStructure),
			HIITNote:      optionalString(d.HIITNote),
		}}
		sortOrder := 0
		for _, s := range d.Sections {
			for _, e := range s.Exercises {
				bp.exercises = append(bp.exercises, domain.DayExercise{
					SectionTitle: s.Title,
					Ref:          domain.CustomExercise(e.Name),
					SetsReps:     e.SetsReps,
					Notes:        e.Notes,
					SortOrder:    sortOrder,
					IsHIITMove:   e.IsHIIT,
				})
				sortOrder++
			}
		}
		blueprints = append(blueprints, bp)
	}
	return blueprints
}

// copyBlueprints turns stored days and exercises into blueprints for a
// fork. Every field except ids and parent links is kept.
func copyBlueprints(days []domain.PlanDay, exercises []domain.DayExercise) []dayBlueprint {
	byDay := make(map[primitive.ObjectID][]domain.DayExercise, len(days))
	for _, e := range exercises {
		byDay[e.PlanDayID] = append(byDay[e.PlanDayID], e)
	}
	blueprints := make([]dayBlueprint, len(days))
	for i, d := range days {
		blueprints[i] = dayBlueprint{day: d, exercises: byDay[d.ID]}
	}
	return blueprints
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
