package service_test

import (
	"context"
	"errors"
	"testing"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func TestResolve_CustomNameWinsWithoutLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLibraryLookup(ctrl)
	lookup.EXPECT().LibraryNames(gomock.Any(), gomock.Any()).Times(0)

	resolver := service.NewExerciseNameResolver(lookup)
	resolved, err := resolver.Resolve(context.Background(), []domain.DayExercise{
		{Ref: domain.CustomExercise("TRX Rows")},
		{Ref: domain.CustomExercise("  Plank ")},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "TRX Rows", resolved[0].DisplayName)
	assert.Equal(t, "Plank", resolved[1].DisplayName)
}

func TestResolve_SingleBatchOfDistinctIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLibraryLookup(ctrl)

	squat, press, gone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	lookup.EXPECT().
		LibraryNames(gomock.Any(), []primitive.ObjectID{squat, press, gone}).
		Return(map[primitive.ObjectID]string{squat: "Goblet Squat", press: "Floor Press"}, nil).
		Times(1)

	resolver := service.NewExerciseNameResolver(lookup)
	resolved, err := resolver.Resolve(context.Background(), []domain.DayExercise{
		{Ref: domain.LibraryExerciseRef(squat)},
		{Ref: domain.CustomExercise("Burpees")},
		{Ref: domain.LibraryExerciseRef(press)},
		{Ref: domain.LibraryExerciseRef(squat)},
		{Ref: domain.LibraryExerciseRef(gone)},
		{},
	})
	require.NoError(t, err)

	var names []string
	for _, r := range resolved {
		names = append(names, r.DisplayName)
	}
	assert.Equal(t, []string{"Goblet Squat", "Burpees", "Floor Press", "Goblet Squat", "", ""}, names)
}

func TestResolve_LookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockLibraryLookup(ctrl)
	boom := errors.New("connection reset")
	lookup.EXPECT().LibraryNames(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := service.NewExerciseNameResolver(lookup).Resolve(context.Background(), []domain.DayExercise{
		{Ref: domain.LibraryExerciseRef(primitive.NewObjectID())},
	})
	assert.ErrorIs(t, err, boom)
}

func TestDisplayName(t *testing.T) {
	known, gone := primitive.NewObjectID(), primitive.NewObjectID()

	tests := []struct {
		name     string
		ref      domain.ExerciseRef
		expected string
	}{
		{name: "custom", ref: domain.CustomExercise("Wall Sit"), expected: "Wall Sit"},
		{name: "library", ref: domain.LibraryExerciseRef(known), expected: "Deadlift"},
		{name: "missing library entry", ref: domain.LibraryExerciseRef(gone), expected: service.UnknownExerciseName},
		{name: "no reference", ref: domain.ExerciseRef{}, expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := NewMockLibraryLookup(ctrl)
			lookup.EXPECT().
				LibraryNames(gomock.Any(), gomock.Any()).
				Return(map[primitive.ObjectID]string{known: "Deadlift"}, nil).
				AnyTimes()

			got, err := service.NewExerciseNameResolver(lookup).DisplayName(context.Background(), domain.DayExercise{Ref: tt.ref})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
