package service

import (
	"context"
	"fmt"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnknownExerciseName is shown by single-item lookups whose library entry
// is gone.
const UnknownExerciseName = "Unknown"

//go:generate mockgen -source=$GOFILE -destination=resolver_mocks_test.go -package=service_test

// LibraryLookup maps library exercise ids to names in one round trip. Ids
// missing from the library are absent from the result.
type LibraryLookup interface {
	LibraryNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type repositoryLibraryLookup struct {
	repo repository.ExerciseLibraryRepository
}

// NewLibraryLookup answers lookups straight from the library repository.
func NewLibraryLookup(repo repository.ExerciseLibraryRepository) LibraryLookup {
	return &repositoryLibraryLookup{repo: repo}
}

func (l *repositoryLibraryLookup) LibraryNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	exercises, err := l.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(exercises))
	for _, e := range exercises {
		names[e.ID] = e.Name
	}
	return names, nil
}

// ResolvedExercise is a day exercise with the name a client should show.
type ResolvedExercise struct {
	domain.DayExercise
	DisplayName string
}

// ExerciseNameResolver turns exercise references into display names.
type ExerciseNameResolver struct {
	lookup LibraryLookup
}

func NewExerciseNameResolver(lookup LibraryLookup) *ExerciseNameResolver {
	return &ExerciseNameResolver{lookup: lookup}
}

// Resolve annotates exercises in order. A custom name wins; a library
// reference takes the library name; anything unresolved gets "". All
// library ids are looked up in a single batch.
func (r *ExerciseNameResolver) Resolve(ctx context.Context, exercises []domain.DayExercise) ([]ResolvedExercise, error) {
	var ids []primitive.ObjectID
	seen := make(map[primitive.ObjectID]struct{})
	for _, e := range exercises {
		if _, custom := e.Ref.CustomName(); custom {
			continue
		}
		id, ok := e.Ref.LibraryID()
		if !ok {
			continue
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	names := map[primitive.ObjectID]string{}
	if len(ids) > 0 {
		var err error
		if names, err = r.lookup.LibraryNames(ctx, ids); err != nil {
			return nil, fmt.Errorf("resolve exercise names: %w", err)
		}
	}

	resolved := make([]ResolvedExercise, len(exercises))
	for i, e := range exercises {
		resolved[i] = ResolvedExercise{DayExercise: e, DisplayName: displayName(e.Ref, names)}
	}
	return resolved, nil
}

// DisplayName resolves one exercise. A library reference whose entry is
// gone reads UnknownExerciseName; an exercise with no usable reference
// reads "".
func (r *ExerciseNameResolver) DisplayName(ctx context.Context, exercise domain.DayExercise) (string, error) {
	resolved, err := r.Resolve(ctx, []domain.DayExercise{exercise})
	if err != nil {
		return "", err
	}
	name := resolved[0].DisplayName
	if _, library := exercise.Ref.LibraryID(); library && name == "" {
		return UnknownExerciseName, nil
	}
	return name, nil
}

func displayName(ref domain.ExerciseRef, names map[primitive.ObjectID]string) string {
	if name, ok := ref.CustomName(); ok && name != "" {
		return name
	}
	if id, ok := ref.LibraryID(); ok {
		return names[id]
	}
	return ""
}
