package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type libraryRepository struct{ s *Store }

func (r *libraryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error) {
	defer r.s.lock(ctx)()
	e, ok := r.s.data.library[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *libraryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.LibraryExercise, error) {
	defer r.s.lock(ctx)()
	exercises := []domain.LibraryExercise{}
	for id := range idSet(ids) {
		if e, ok := r.s.data.library[id]; ok {
			exercises = append(exercises, e)
		}
	}
	return exercises, nil
}

func (r *libraryRepository) List(ctx context.Context, filter repository.LibraryFilter) ([]domain.LibraryExercise, error) {
	defer r.s.lock(ctx)()
	equipment := strings.ToLower(filter.Equipment)
	exercises := []domain.LibraryExercise{}
	for _, e := range r.s.data.library {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if equipment != "" && !strings.Contains(strings.ToLower(e.Equipment), equipment) {
			continue
		}
		exercises = append(exercises, e)
	}
	sort.Slice(exercises, func(i, j int) bool { return exercises[i].Name < exercises[j].Name })
	return exercises, nil
}

func (r *libraryRepository) DistinctEquipment(ctx context.Context) ([]string, error) {
	defer r.s.lock(ctx)()
	seen := map[string]struct{}{}
	equipment := []string{}
	for _, e := range r.s.data.library {
		if e.Equipment == "" {
			continue
		}
		if _, ok := seen[e.Equipment]; ok {
			continue
		}
		seen[e.Equipment] = struct{}{}
		equipment = append(equipment, e.Equipment)
	}
	sort.Strings(equipment)
	return equipment, nil
}

func (r *libraryRepository) Upsert(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("library exercise name is required")
	}
	defer r.s.lock(ctx)()
	for id, e := range r.s.data.library {
		if e.Name == exercise.Name {
			exercise.ID = id
			r.s.data.library[id] = *exercise
			return id, nil
		}
	}
	exercise.ID = primitive.NewObjectID()
	r.s.data.library[exercise.ID] = *exercise
	return exercise.ID, nil
}
