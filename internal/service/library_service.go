package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/plantemplate"
	"weeklygrind/plan-tracker/internal/repository"
)

type LibraryService interface {
	List(ctx context.Context, filter repository.LibraryFilter) ([]domain.LibraryExercise, error)
	// EquipmentOptions merges the template's tags with every equipment value
	// found in the library.
	EquipmentOptions(ctx context.Context) ([]string, error)
	Seed(ctx context.Context, exercises []domain.LibraryExercise) (int, error)
}

type libraryService struct {
	repo repository.ExerciseLibraryRepository
}

func NewLibraryService(repo repository.ExerciseLibraryRepository) LibraryService {
	return &libraryService{repo: repo}
}

func (s *libraryService) List(ctx context.Context, filter repository.LibraryFilter) ([]domain.LibraryExercise, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Equipment = strings.TrimSpace(filter.Equipment)
	exercises, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list exercise library: %w", err)
	}
	return exercises, nil
}

func (s *libraryService) EquipmentOptions(ctx context.Context) ([]string, error) {
	fromLibrary, err := s.repo.DistinctEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	options := domain.NormalizeTags(append(plantemplate.Default().EquipmentTags, fromLibrary...))
	sort.Strings(options)
	return options, nil
}

// Seed upserts library entries by name and returns how many were written.
func (s *libraryService) Seed(ctx context.Context, exercises []domain.LibraryExercise) (int, error) {
	written := 0
	for i := range exercises {
		e := exercises[i]
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return written, validationError("library entry %d has no name", i)
		}
		if _, err := s.repo.Upsert(ctx, &e); err != nil {
			return written, fmt.Errorf("upsert %q: %w", e.Name, err)
		}
		written++
	}
	return written, nil
}
