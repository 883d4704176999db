package service_test

import (
	"testing"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestActivePlan_NeedsSetup(t *testing.T) {
	f := newFixture(t)
	view, err := f.tracker.ActivePlan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.True(t, view.NeedsSetup)
	assert.Nil(t, view.UserPlan)
	assert.Nil(t, view.Plan)
}

func TestStartPlan(t *testing.T) {
	f := newFixture(t)
	first := f.defaultPlan(t, f.owner)
	second := f.defaultPlan(t, f.owner)

	userPlan, created, err := f.tracker.StartPlan(f.ctx, f.owner, first.Plan.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, userPlan.CurrentDayIndex)

	_, err = f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, 1)
	require.NoError(t, err)

	rebound, created, err := f.tracker.StartPlan(f.ctx, f.owner, second.Plan.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, userPlan.ID, rebound.ID)
	assert.Equal(t, second.Plan.ID, rebound.PlanID)
	assert.Equal(t, 1, rebound.CurrentDayIndex)

	_, _, err = f.tracker.StartPlan(f.ctx, f.other, first.Plan.ID)
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}

func TestMarkExerciseComplete_Idempotent(t *testing.T) {
	f := newFixture(t)
	detail, userPlan := f.activePlan(t, f.owner)
	exercise := dayOf(t, detail, 1).Exercises[0]

	for i := 0; i < 2; i++ {
		require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 1, exercise.ID))
	}

	completions, err := f.repos.Completions.GetByUserPlanID(f.ctx, userPlan.ID)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, domain.CompletionInProgress, completions[0].State())
	assert.Equal(t, []primitive.ObjectID{exercise.ID}, completions[0].ExerciseIDs)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterExercisesChecked))
}

func TestMarkExerciseComplete_Rejects(t *testing.T) {
	f := newFixture(t)
	detail, userPlan := f.activePlan(t, f.owner)
	dayOne := dayOf(t, detail, 1).Exercises[0]
	_, otherUserPlan := f.activePlan(t, f.other)

	tests := []struct {
		name       string
		user       primitive.ObjectID
		userPlanID primitive.ObjectID
		dayNumber  int
		exerciseID primitive.ObjectID
		expected   error
	}{
		{name: "day zero", user: f.owner, userPlanID: userPlan.ID, dayNumber: 0, exerciseID: dayOne.ID, expected: service.ErrInvalidDayNumber},
		{name: "day eight", user: f.owner, userPlanID: userPlan.ID, dayNumber: 8, exerciseID: dayOne.ID, expected: service.ErrInvalidDayNumber},
		{name: "missing exercise id", user: f.owner, userPlanID: userPlan.ID, dayNumber: 1, expected: service.ErrValidationFailed},
		{name: "exercise of another day", user: f.owner, userPlanID: userPlan.ID, dayNumber: 2, exerciseID: dayOne.ID, expected: service.ErrValidationFailed},
		{name: "unknown user plan", user: f.owner, userPlanID: primitive.NewObjectID(), dayNumber: 1, exerciseID: dayOne.ID, expected: service.ErrUserPlanNotFound},
		{name: "foreign user plan", user: f.owner, userPlanID: otherUserPlan.ID, dayNumber: 1, exerciseID: dayOne.ID, expected: service.ErrUserPlanNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.tracker.MarkExerciseComplete(f.ctx, tt.user, tt.userPlanID, tt.dayNumber, tt.exerciseID)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestMarkExerciseIncomplete(t *testing.T) {
	f := newFixture(t)
	detail, userPlan := f.activePlan(t, f.owner)
	exercises := dayOf(t, detail, 1).Exercises

	// nothing in progress yet
	require.NoError(t, f.tracker.MarkExerciseIncomplete(f.ctx, f.owner, userPlan.ID, 1, exercises[0].ID))

	require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 1, exercises[0].ID))
	require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 1, exercises[1].ID))
	require.NoError(t, f.tracker.MarkExerciseIncomplete(f.ctx, f.owner, userPlan.ID, 1, exercises[0].ID))

	view, err := f.tracker.ActivePlan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{exercises[1].ID}, view.Checked[1])
}

func TestFinalizedChecklistIsImmutable(t *testing.T) {
	f := newFixture(t)
	detail, userPlan := f.activePlan(t, f.owner)
	exercises := dayOf(t, detail, 1).Exercises

	require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 1, exercises[0].ID))
	_, err := f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.tracker.MarkExerciseIncomplete(f.ctx, f.owner, userPlan.ID, 1, exercises[0].ID))

	completions, err := f.repos.Completions.GetByUserPlanID(f.ctx, userPlan.ID)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, domain.CompletionFinalized, completions[0].State())
	assert.Equal(t, []primitive.ObjectID{exercises[0].ID}, completions[0].ExerciseIDs)

	// a new cycle opens a fresh in-progress completion which wins in the view
	require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 1, exercises[1].ID))
	view, err := f.tracker.ActivePlan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, view.Completions, 2)
	assert.Equal(t, []primitive.ObjectID{exercises[1].ID}, view.Checked[1])
}

func TestCompleteDay_AlwaysAdvancesPointer(t *testing.T) {
	f := newFixture(t)
	_, userPlan := f.activePlan(t, f.owner)

	// the pointer moves one step per completion whichever day was completed
	days := []int{3, 3, 7, 1, 2, 6, 5}
	expected := []int{2, 3, 4, 5, 6, 7, 1}
	for i, day := range days {
		updated, err := f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, day)
		require.NoError(t, err)
		assert.Equal(t, expected[i], updated.CurrentDayIndex, "completion %d of day %d", i, day)
	}
	assert.Equal(t, float64(len(days)), testutil.ToFloat64(f.metrics.CounterDaysCompleted))
}

func TestCompleteDay_RestDayScenario(t *testing.T) {
	f := newFixture(t)
	detail, userPlan := f.activePlan(t, f.owner)
	require.Equal(t, domain.DayTypeRest, dayOf(t, detail, 4).Day.Type)

	for day := 1; day <= 3; day++ {
		_, err := f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, day)
		require.NoError(t, err)
	}

	updated, err := f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.CurrentDayIndex)

	completions, err := f.repos.Completions.GetByUserPlanID(f.ctx, userPlan.ID)
	require.NoError(t, err)
	var dayFour []domain.Completion
	for _, c := range completions {
		if c.DayNumber == 4 {
			dayFour = append(dayFour, c)
		}
	}
	require.Len(t, dayFour, 1)
	assert.Equal(t, domain.CompletionFinalized, dayFour[0].State())
	assert.Empty(t, dayFour[0].ExerciseIDs)
}

func TestCompleteDay_Rejects(t *testing.T) {
	f := newFixture(t)
	_, userPlan := f.activePlan(t, f.owner)

	_, err := f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, 0)
	assert.ErrorIs(t, err, service.ErrInvalidDayNumber)

	_, err = f.tracker.CompleteDay(f.ctx, f.other, userPlan.ID, 1)
	assert.ErrorIs(t, err, service.ErrUserPlanNotFound)

	unchanged, err := f.repos.UserPlans.GetByID(f.ctx, userPlan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unchanged.CurrentDayIndex)
}

func TestActivePlan_CheckedPrefersLatestFinalized(t *testing.T) {
	f := newFixture(t)
	detail, userPlan := f.activePlan(t, f.owner)
	exercises := dayOf(t, detail, 2).Exercises
	require.GreaterOrEqual(t, len(exercises), 2)

	require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 2, exercises[0].ID))
	_, err := f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.tracker.MarkExerciseComplete(f.ctx, f.owner, userPlan.ID, 2, exercises[1].ID))
	_, err = f.tracker.CompleteDay(f.ctx, f.owner, userPlan.ID, 2)
	require.NoError(t, err)

	view, err := f.tracker.ActivePlan(f.ctx, f.owner)
	require.NoError(t, err)
	assert.False(t, view.NeedsSetup)
	assert.Equal(t, detail.Plan.ID, view.Plan.Plan.ID)
	assert.Len(t, view.Completions, 2)
	assert.Equal(t, []primitive.ObjectID{exercises[1].ID}, view.Checked[2])
	_, hasDayOne := view.Checked[1]
	assert.False(t, hasDayOne)
}
