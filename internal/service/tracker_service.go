package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/metrics"
	"weeklygrind/plan-tracker/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivePlanView is what a client needs to render today's workout.
type ActivePlanView struct {
	UserPlan *domain.UserPlan
	// Plan is nil when the user has no user plan or the plan is gone.
	Plan        *PlanDetail
	Completions []domain.Completion
	// Checked maps a day number to the exercise ids to show as done: the
	// in-progress checklist if one exists, else the latest finalized one.
	Checked    map[int][]primitive.ObjectID
	NeedsSetup bool
}

// TrackerService drives the per-day completion state machine of a user's
// active plan.
type TrackerService interface {
	ActivePlan(ctx context.Context, userID primitive.ObjectID) (*ActivePlanView, error)
	// StartPlan binds an owned plan as the user's active plan. created
	// reports whether a new user plan was made.
	StartPlan(ctx context.Context, userID, planID primitive.ObjectID) (userPlan *domain.UserPlan, created bool, err error)
	MarkExerciseComplete(ctx context.Context, userID, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error
	MarkExerciseIncomplete(ctx context.Context, userID, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error
	CompleteDay(ctx context.Context, userID, userPlanID primitive.ObjectID, dayNumber int) (*domain.UserPlan, error)
}

type trackerService struct {
	tree        *planTree
	userPlans   repository.UserPlanRepository
	completions repository.CompletionRepository
	transactor  repository.Transactor
	metrics     *metrics.Manager
	now         func() time.Time
}

func NewTrackerService(repos *repository.Repositories, resolver *ExerciseNameResolver, metricsManager *metrics.Manager) TrackerService {
	return &trackerService{
		tree:        newPlanTree(repos, resolver),
		userPlans:   repos.UserPlans,
		completions: repos.Completions,
		transactor:  repos.Transactor,
		metrics:     metricsManager,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *trackerService) ActivePlan(ctx context.Context, userID primitive.ObjectID) (*ActivePlanView, error) {
	userPlan, err := s.userPlans.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ActivePlanView{NeedsSetup: true, Checked: map[int][]primitive.ObjectID{}}, nil
		}
		return nil, fmt.Errorf("get user plan: %w", err)
	}

	view := &ActivePlanView{UserPlan: userPlan, Checked: map[int][]primitive.ObjectID{}}
	plan, err := s.tree.plans.GetByID(ctx, userPlan.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warnf("user plan %s points at missing plan %s", userPlan.ID.Hex(), userPlan.PlanID.Hex())
			return view, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if view.Plan, err = s.tree.detail(ctx, plan); err != nil {
		return nil, err
	}

	if view.Completions, err = s.completions.GetByUserPlanID(ctx, userPlan.ID); err != nil {
		return nil, fmt.Errorf("get completions: %w", err)
	}
	view.Checked = checkedByDay(view.Completions)
	return view, nil
}

// checkedByDay picks one checklist per day. An in-progress completion
// always wins over finalized ones.
func checkedByDay(completions []domain.Completion) map[int][]primitive.ObjectID {
	chosen := make(map[int]*domain.Completion)
	for i := range completions {
		c := &completions[i]
		cur, ok := chosen[c.DayNumber]
		switch {
		case !ok:
			chosen[c.DayNumber] = c
		case cur.State() == domain.CompletionInProgress:
		case c.State() == domain.CompletionInProgress, c.CompletedAt.After(*cur.CompletedAt):
			chosen[c.DayNumber] = c
		}
	}
	checked := make(map[int][]primitive.ObjectID, len(chosen))
	for day, c := range chosen {
		ids := c.ExerciseIDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		checked[day] = ids
	}
	return checked
}

func (s *trackerService) StartPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, bool, error) {
	if _, err := s.tree.ownedPlan(ctx, userID, planID); err != nil {
		return nil, false, err
	}
	_, err := s.userPlans.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("get user plan: %w", err)
	}
	created := errors.Is(err, repository.ErrNotFound)

	userPlan, err := s.userPlans.Upsert(ctx, userID, planID)
	if err != nil {
		return nil, false, fmt.Errorf("bind user plan: %w", err)
	}
	log.Debugf("user %s started plan %s", userID.Hex(), planID.Hex())
	return userPlan, created, nil
}

// ownedUserPlan reports user plans of other users as missing.
func (s *trackerService) ownedUserPlan(ctx context.Context, userID, userPlanID primitive.ObjectID) (*domain.UserPlan, error) {
	userPlan, err := s.userPlans.GetByID(ctx, userPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserPlanNotFound
		}
		return nil, fmt.Errorf("get user plan: %w", err)
	}
	if userPlan.UserID != userID {
		return nil, ErrUserPlanNotFound
	}
	return userPlan, nil
}

func (s *trackerService) MarkExerciseComplete(ctx context.Context, userID, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error {
	if !domain.ValidDayNumber(dayNumber) {
		return ErrInvalidDayNumber
	}
	if dayExerciseID.IsZero() {
		return validationError("day_exercise_id is required")
	}
	userPlan, err := s.ownedUserPlan(ctx, userID, userPlanID)
	if err != nil {
		return err
	}

	// the exercise has to sit on that day of the active plan
	_, day, err := s.tree.ownedExercise(ctx, userID, dayExerciseID)
	if err != nil {
		return err
	}
	if day.PlanID != userPlan.PlanID || day.DayNumber != dayNumber {
		return validationError("exercise %s is not part of day %d of the active plan", dayExerciseID.Hex(), dayNumber)
	}

	if _, err := s.completions.AddExercise(ctx, userPlan.ID, dayNumber, dayExerciseID); err != nil {
		return fmt.Errorf("check exercise: %w", err)
	}
	s.metrics.CounterExercisesChecked.Inc()
	return nil
}

func (s *trackerService) MarkExerciseIncomplete(ctx context.Context, userID, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error {
	if !domain.ValidDayNumber(dayNumber) {
		return ErrInvalidDayNumber
	}
	if dayExerciseID.IsZero() {
		return validationError("day_exercise_id is required")
	}
	userPlan, err := s.ownedUserPlan(ctx, userID, userPlanID)
	if err != nil {
		return err
	}
	if err := s.completions.RemoveExercise(ctx, userPlan.ID, dayNumber, dayExerciseID); err != nil {
		return fmt.Errorf("uncheck exercise: %w", err)
	}
	return nil
}

// CompleteDay finalizes the day and moves the pointer to the next day of
// the week. The pointer advances from its current value, whichever day was
// completed.
func (s *trackerService) CompleteDay(ctx context.Context, userID, userPlanID primitive.ObjectID, dayNumber int) (*domain.UserPlan, error) {
	if !domain.ValidDayNumber(dayNumber) {
		return nil, ErrInvalidDayNumber
	}
	if _, err := s.ownedUserPlan(ctx, userID, userPlanID); err != nil {
		return nil, err
	}

	var updated *domain.UserPlan
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.completions.Finalize(ctx, userPlanID, dayNumber, s.now()); err != nil {
			return fmt.Errorf("finalize day: %w", err)
		}
		var err error
		if updated, err = s.userPlans.AdvanceDay(ctx, userPlanID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserPlanNotFound
			}
			return fmt.Errorf("advance day: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.CounterDaysCompleted.Inc()
	return updated, nil
}
