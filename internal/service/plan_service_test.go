package service_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/plantemplate"
	"weeklygrind/plan-tracker/internal/repository"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func ptr[T any](v T) *T { return &v }

func TestCreatePlan_FromTemplate(t *testing.T) {
	f := newFixture(t)
	tpl := plantemplate.Default()

	detail := f.defaultPlan(t, f.owner)
	assert.Equal(t, tpl.Name, detail.Plan.Name)
	assert.Equal(t, tpl.EquipmentTags, detail.Plan.EquipmentTags)
	assert.Equal(t, f.owner, detail.Plan.OwnerID)
	require.Len(t, detail.Days, domain.DaysPerWeek)

	for i, d := range detail.Days {
		assert.Equal(t, i+1, d.Day.DayNumber)
		assert.Equal(t, tpl.Days[i].Type, d.Day.Type)
		assert.Len(t, d.Exercises, tpl.Days[i].ExerciseCount(), "day %d", d.Day.DayNumber)
		for j, e := range d.Exercises {
			assert.Equal(t, j, e.SortOrder)
			assert.NotEmpty(t, e.DisplayName)
		}
	}
	rest := dayOf(t, detail, 4)
	assert.Equal(t, domain.DayTypeRest, rest.Day.Type)
	assert.NotNil(t, rest.Day.RestContent)
	assert.Empty(t, rest.Exercises)
}

func TestCreatePlan_Overrides(t *testing.T) {
	f := newFixture(t)

	detail, err := f.plans.CreatePlan(f.ctx, f.owner, service.CreatePlanInput{
		Name:          ptr("Hotel Week"),
		EquipmentTags: []string{"Bands", " Bands", "", "Kettlebell"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hotel Week", detail.Plan.Name)
	assert.Equal(t, []string{"Bands", "Kettlebell"}, detail.Plan.EquipmentTags)

	_, err = f.plans.CreatePlan(f.ctx, f.owner, service.CreatePlanInput{Name: ptr("   ")})
	assert.ErrorIs(t, err, service.ErrValidationFailed)
}

func TestListPlans_OnlyOwn(t *testing.T) {
	f := newFixture(t)
	f.defaultPlan(t, f.owner)
	f.defaultPlan(t, f.owner)
	f.defaultPlan(t, f.other)

	plans, err := f.plans.ListPlans(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	for _, p := range plans {
		assert.Equal(t, f.owner, p.OwnerID)
	}
}

func TestGetPlan_ForeignPlanIsNotFound(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)

	_, err := f.plans.GetPlan(f.ctx, f.other, detail.Plan.ID)
	assert.ErrorIs(t, err, service.ErrPlanNotFound)

	_, err = f.plans.GetPlan(f.ctx, f.owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}

func TestUpdatePlan(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)

	plan, err := f.plans.UpdatePlan(f.ctx, f.owner, detail.Plan.ID, service.PlanUpdate{
		Name:          ptr("Renamed"),
		EquipmentTags: &[]string{"Rower", "Rower"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", plan.Name)
	assert.Equal(t, []string{"Rower"}, plan.EquipmentTags)

	_, err = f.plans.UpdatePlan(f.ctx, f.other, detail.Plan.ID, service.PlanUpdate{Name: ptr("Mine now")})
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t)
	active, _ := f.activePlan(t, f.owner)
	spare := f.defaultPlan(t, f.owner)

	err := f.plans.DeletePlan(f.ctx, f.owner, active.Plan.ID)
	assert.ErrorIs(t, err, service.ErrPlanActive)

	require.NoError(t, f.plans.DeletePlan(f.ctx, f.owner, spare.Plan.ID))
	_, err = f.plans.GetPlan(f.ctx, f.owner, spare.Plan.ID)
	assert.ErrorIs(t, err, service.ErrPlanNotFound)

	days, err := f.repos.PlanDays.GetByPlanID(f.ctx, spare.Plan.ID)
	require.NoError(t, err)
	assert.Empty(t, days)
	exercise := dayOf(t, spare, 1).Exercises[0]
	_, err = f.repos.DayExercises.GetByID(f.ctx, exercise.ID)
	assert.Error(t, err)
}

func TestUpdateDay(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	day := dayOf(t, detail, 2).Day

	updated, err := f.plans.UpdateDay(f.ctx, f.owner, day.ID, service.DayUpdate{
		Type:     ptr(domain.DayTypeFull),
		Duration: ptr("50 min"),
		HIITNote: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DayTypeFull, updated.Type)
	assert.Equal(t, "50 min", updated.Duration)
	assert.Nil(t, updated.HIITNote)

	_, err = f.plans.UpdateDay(f.ctx, f.owner, day.ID, service.DayUpdate{Type: ptr(domain.DayType("cardio"))})
	assert.ErrorIs(t, err, service.ErrValidationFailed)

	_, err = f.plans.UpdateDay(f.ctx, f.other, day.ID, service.DayUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, service.ErrNotPlanOwner)

	_, err = f.plans.UpdateDay(f.ctx, f.owner, primitive.NewObjectID(), service.DayUpdate{})
	assert.ErrorIs(t, err, service.ErrPlanDayNotFound)
}

func TestAddExercise(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	day := dayOf(t, detail, 1)
	entry := f.libraryEntry(t, "Landmine Press", "Barbell")

	added, err := f.plans.AddExercise(f.ctx, f.owner, day.Day.ID, service.NewExercise{
		SectionTitle:      "Finisher",
		LibraryExerciseID: &entry.ID,
		SetsReps:          "3x10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Landmine Press", added.DisplayName)
	assert.Equal(t, len(day.Exercises), added.SortOrder)

	custom, err := f.plans.AddExercise(f.ctx, f.owner, day.Day.ID, service.NewExercise{CustomName: "Dead Hang"})
	require.NoError(t, err)
	assert.Equal(t, added.SortOrder+1, custom.SortOrder)

	tests := []struct {
		name     string
		user     primitive.ObjectID
		input    service.NewExercise
		expected error
	}{
		{name: "neither reference", user: f.owner, input: service.NewExercise{}, expected: service.ErrValidationFailed},
		{name: "both references", user: f.owner, input: service.NewExercise{CustomName: "x", LibraryExerciseID: &entry.ID}, expected: service.ErrValidationFailed},
		{name: "unknown library id", user: f.owner, input: service.NewExercise{LibraryExerciseID: ptr(primitive.NewObjectID())}, expected: service.ErrLibraryExerciseNotFound},
		{name: "not owner", user: f.other, input: service.NewExercise{CustomName: "x"}, expected: service.ErrNotPlanOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.plans.AddExercise(f.ctx, tt.user, day.Day.ID, tt.input)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestUpdateExercise_SwapsReference(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	exercise := dayOf(t, detail, 1).Exercises[0]
	entry := f.libraryEntry(t, "Chin-up", "Pull-up Bar")

	swapped, err := f.plans.UpdateExercise(f.ctx, f.owner, exercise.ID, service.ExerciseUpdate{
		LibraryExerciseID: &entry.ID,
		Notes:             ptr("slow negatives"),
	})
	require.NoError(t, err)
	_, isCustom := swapped.Ref.CustomName()
	assert.False(t, isCustom)
	assert.Equal(t, "Chin-up", swapped.DisplayName)
	assert.Equal(t, "slow negatives", swapped.Notes)
	assert.Equal(t, exercise.SetsReps, swapped.SetsReps)

	back, err := f.plans.UpdateExercise(f.ctx, f.owner, exercise.ID, service.ExerciseUpdate{CustomName: ptr("Band Pull-apart")})
	require.NoError(t, err)
	_, isLibrary := back.Ref.LibraryID()
	assert.False(t, isLibrary)
	assert.Equal(t, "Band Pull-apart", back.DisplayName)

	_, err = f.plans.UpdateExercise(f.ctx, f.other, exercise.ID, service.ExerciseUpdate{SetsReps: ptr("1x1")})
	assert.ErrorIs(t, err, service.ErrNotPlanOwner)

	_, err = f.plans.UpdateExercise(f.ctx, f.owner, primitive.NewObjectID(), service.ExerciseUpdate{})
	assert.ErrorIs(t, err, service.ErrDayExerciseNotFound)
}

func TestDeleteExercise(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	exercise := dayOf(t, detail, 3).Exercises[0]

	assert.ErrorIs(t, f.plans.DeleteExercise(f.ctx, f.other, exercise.ID), service.ErrNotPlanOwner)
	require.NoError(t, f.plans.DeleteExercise(f.ctx, f.owner, exercise.ID))
	assert.ErrorIs(t, f.plans.DeleteExercise(f.ctx, f.owner, exercise.ID), service.ErrDayExerciseNotFound)
}

func TestExerciseDisplayName_LibraryEntryRemoved(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	day := dayOf(t, detail, 5)

	// reference an id that was never in the library by writing it directly
	orphan := domain.DayExercise{PlanDayID: day.Day.ID, Ref: domain.LibraryExerciseRef(primitive.NewObjectID())}
	_, err := f.repos.DayExercises.Create(f.ctx, &orphan)
	require.NoError(t, err)

	name, err := f.plans.ExerciseDisplayName(f.ctx, f.owner, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, service.UnknownExerciseName, name)

	name, err = f.plans.ExerciseDisplayName(f.ctx, f.owner, day.Exercises[0].ID)
	require.NoError(t, err)
	assert.Equal(t, day.Exercises[0].DisplayName, name)

	_, err = f.plans.ExerciseDisplayName(f.ctx, f.other, orphan.ID)
	assert.ErrorIs(t, err, service.ErrNotPlanOwner)
}

func TestExportPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := NewMockFileStorage(ctrl)
	f := newFixture(t, withStorage(files))
	detail := f.defaultPlan(t, f.owner)

	var storedKey string
	var storedBody []byte
	files.EXPECT().
		PutObject(gomock.Any(), gomock.Any(), "application/json", gomock.Any()).
		DoAndReturn(func(_ any, key, _ string, body []byte) error {
			storedKey, storedBody = key, body
			return nil
		})
	files.EXPECT().
		GeneratePresignedDownloadURL(gomock.Any(), gomock.Any(), time.Minute).
		DoAndReturn(func(_ any, key string, _ time.Duration) (string, error) {
			return "https://s3.test/" + key + "?sig=abc", nil
		})

	result, err := f.plans.ExportPlan(f.ctx, f.owner, detail.Plan.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(storedKey, "exports/"+f.owner.Hex()+"/"+detail.Plan.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(storedKey, ".json"))
	assert.Equal(t, "https://s3.test/"+storedKey+"?sig=abc", result.DownloadURL)
	assert.Equal(t, int64(len(storedBody)), result.Export.Size)

	var doc service.PlanDocument
	require.NoError(t, json.Unmarshal(storedBody, &doc))
	assert.Equal(t, detail.Plan.Name, doc.Name)
	require.Len(t, doc.Days, domain.DaysPerWeek)
	assert.Equal(t, dayOf(t, detail, 1).Exercises[0].DisplayName, doc.Days[0].Exercises[0].Name)

	exports, err := f.plans.ListExports(f.ctx, f.owner, detail.Plan.ID)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, storedKey, exports[0].ObjectKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterPlanExports))
}

func TestExportPlan_Failures(t *testing.T) {
	t.Run("no storage configured", func(t *testing.T) {
		f := newFixture(t)
		detail := f.defaultPlan(t, f.owner)
		_, err := f.plans.ExportPlan(f.ctx, f.owner, detail.Plan.ID)
		assert.ErrorIs(t, err, service.ErrBackendUnavailable)
	})

	t.Run("upload fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		files := NewMockFileStorage(ctrl)
		f := newFixture(t, withStorage(files))
		detail := f.defaultPlan(t, f.owner)

		boom := errors.New("bucket gone")
		files.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

		_, err := f.plans.ExportPlan(f.ctx, f.owner, detail.Plan.ID)
		assert.ErrorIs(t, err, boom)
		exports, err := f.plans.ListExports(f.ctx, f.owner, detail.Plan.ID)
		require.NoError(t, err)
		assert.Empty(t, exports)
	})

	t.Run("not owner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := newFixture(t, withStorage(NewMockFileStorage(ctrl)))
		detail := f.defaultPlan(t, f.owner)
		_, err := f.plans.ExportPlan(f.ctx, f.other, detail.Plan.ID)
		assert.ErrorIs(t, err, service.ErrPlanNotFound)
	})
}

func TestLibraryService(t *testing.T) {
	f := newFixture(t)
	n, err := f.library.Seed(f.ctx, []domain.LibraryExercise{
		{Name: "Kettlebell Swing", Category: "power", Equipment: "Kettlebell"},
		{Name: "Band Row", Category: "strength", Equipment: "Resistance Bands"},
		{Name: "Rower Sprint", Category: "cardio", Equipment: "Zephyr Rower"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.library.Seed(f.ctx, []domain.LibraryExercise{{Name: " "}})
	assert.ErrorIs(t, err, service.ErrValidationFailed)

	byEquipment, err := f.library.List(f.ctx, libraryFilter("", "band"))
	require.NoError(t, err)
	require.Len(t, byEquipment, 1)
	assert.Equal(t, "Band Row", byEquipment[0].Name)

	all, err := f.library.List(f.ctx, libraryFilter("", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Band Row", "Kettlebell Swing", "Rower Sprint"}, libraryNames(all))

	options, err := f.library.EquipmentOptions(f.ctx)
	require.NoError(t, err)
	assert.IsIncreasing(t, options)
	assert.Contains(t, options, "Zephyr Rower")
	for _, tag := range plantemplate.Default().EquipmentTags {
		assert.Contains(t, options, tag)
	}
}

func libraryFilter(category, equipment string) repository.LibraryFilter {
	return repository.LibraryFilter{Category: category, Equipment: equipment}
}

func libraryNames(exercises []domain.LibraryExercise) []string {
	names := make([]string, len(exercises))
	for i, e := range exercises {
		names[i] = e.Name
	}
	return names
}
