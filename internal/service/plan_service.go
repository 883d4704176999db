package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/metrics"
	"weeklygrind/plan-tracker/internal/plantemplate"
	"weeklygrind/plan-tracker/internal/repository"
	"weeklygrind/plan-tracker/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePlanInput overrides template fields. Nil fields keep the template value.
type CreatePlanInput struct {
	Name          *string
	EquipmentTags []string
}

// PlanUpdate carries the plan header fields to change.
type PlanUpdate struct {
	Name          *string
	EquipmentTags *[]string
}

type DayUpdate struct {
	Type          *domain.DayType
	Name          *string
	Duration      *string
	RestContent   *string
	HIITStructure *string
	HIITNote      *string
}

// NewExercise describes an exercise to append to a day. Exactly one of
// CustomName and LibraryExerciseID must be set.
type NewExercise struct {
	SectionTitle      string
	CustomName        string
	LibraryExerciseID *primitive.ObjectID
	SetsReps          string
	Notes             string
	URL               string
	Equipment         string
	IsHIITMove        bool
}

// ExerciseUpdate swaps or edits an exercise. Setting a library id replaces
// a custom name and setting a custom name replaces a library id.
type ExerciseUpdate struct {
	CustomName        *string
	LibraryExerciseID *primitive.ObjectID
	SectionTitle      *string
	SetsReps          *string
	Notes             *string
	URL               *string
	Equipment         *string
	SortOrder         *int
	IsHIITMove        *bool
}

type PlanExportResult struct {
	Export      domain.PlanExport
	DownloadURL string
	ExpiresAt   time.Time
}

type PlanService interface {
	CreatePlan(ctx context.Context, userID primitive.ObjectID, input CreatePlanInput) (*PlanDetail, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*PlanDetail, error)
	UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, update PlanUpdate) (*domain.Plan, error)
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error

	UpdateDay(ctx context.Context, userID, dayID primitive.ObjectID, update DayUpdate) (*domain.PlanDay, error)
	AddExercise(ctx context.Context, userID, dayID primitive.ObjectID, input NewExercise) (*ResolvedExercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, update ExerciseUpdate) (*ResolvedExercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	ExerciseDisplayName(ctx context.Context, userID, exerciseID primitive.ObjectID) (string, error)

	ExportPlan(ctx context.Context, userID, planID primitive.ObjectID) (*PlanExportResult, error)
	ListExports(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.PlanExport, error)
}

// planService implements the PlanService interface.
type planService struct {
	tree       *planTree
	library    repository.ExerciseLibraryRepository
	userPlans  repository.UserPlanRepository
	exports    repository.PlanExportRepository
	transactor repository.Transactor
	storage    storage.FileStorage
	presignTTL time.Duration
	metrics    *metrics.Manager
}

// NewPlanService creates the plan service. fileStorage may be nil, in which
// case export reports ErrBackendUnavailable.
func NewPlanService(
	repos *repository.Repositories,
	resolver *ExerciseNameResolver,
	fileStorage storage.FileStorage,
	presignTTL time.Duration,
	metricsManager *metrics.Manager,
) PlanService {
	return &planService{
		tree:       newPlanTree(repos, resolver),
		library:    repos.Library,
		userPlans:  repos.UserPlans,
		exports:    repos.Exports,
		transactor: repos.Transactor,
		storage:    fileStorage,
		presignTTL: presignTTL,
		metrics:    metricsManager,
	}
}

// CreatePlan stores a copy of the default template for the user.
func (s *planService) CreatePlan(ctx context.Context, userID primitive.ObjectID, input CreatePlanInput) (*PlanDetail, error) {
	tpl := plantemplate.Default()
	name := tpl.Name
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
	}
	tags := tpl.EquipmentTags
	if input.EquipmentTags != nil {
		tags = input.EquipmentTags
	}

	var plan *domain.Plan
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.tree.create(ctx, userID, name, tags, templateBlueprints(tpl))
		if err != nil && plan != nil && !s.transactor.Atomic() {
			s.cleanupPlan(ctx, plan.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("user %s created plan %s", userID.Hex(), plan.ID.Hex())
	return s.tree.detail(ctx, plan)
}

func (s *planService) cleanupPlan(ctx context.Context, planID primitive.ObjectID) {
	if err := s.tree.remove(context.WithoutCancel(ctx), planID); err != nil {
		log.Errorf("cleanup of partial plan %s: %s", planID.Hex(), err)
	}
}

func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	plans, err := s.tree.plans.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.tree.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	return s.tree.detail(ctx, plan)
}

func (s *planService) UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, update PlanUpdate) (*domain.Plan, error) {
	plan, err := s.tree.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		plan.Name = name
	}
	if update.EquipmentTags != nil {
		plan.EquipmentTags = domain.NormalizeTags(*update.EquipmentTags)
	}
	if err := s.tree.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return plan, nil
}

// DeletePlan removes a plan tree. The user's active plan cannot be deleted.
func (s *planService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if _, err := s.tree.ownedPlan(ctx, userID, planID); err != nil {
		return err
	}
	active, err := s.userPlans.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("get user plan: %w", err)
	}
	if active != nil && active.PlanID == planID {
		return ErrPlanActive
	}
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.tree.remove(ctx, planID)
	})
}

func (s *planService) UpdateDay(ctx context.Context, userID, dayID primitive.ObjectID, update DayUpdate) (*domain.PlanDay, error) {
	day, err := s.tree.ownedDay(ctx, userID, dayID)
	if err != nil {
		return nil, err
	}
	if update.Type != nil {
		if !update.Type.Valid() {
			return nil, validationError("unknown day type %q", *update.Type)
		}
		day.Type = *update.Type
	}
	if update.Name != nil {
		day.Name = *update.Name
	}
	if update.Duration != nil {
		day.Duration = *update.Duration
	}
	// an empty string clears an optional text block
	if update.RestContent != nil {
		day.RestContent = optionalString(*update.RestContent)
	}
	if update.HIITStructure != nil {
		day.HIITStructure = optionalString(*update.HIITStructure)
	}
	if update.HIITNote != nil {
		day.HIITNote = optionalString(*update.HIITNote)
	}
	if err := s.tree.days.Update(ctx, day); err != nil {
		return nil, fmt.Errorf("update plan day: %w", err)
	}
	return day, nil
}

func (s *planService) AddExercise(ctx context.Context, userID, dayID primitive.ObjectID, input NewExercise) (*ResolvedExercise, error) {
	day, err := s.tree.ownedDay(ctx, userID, dayID)
	if err != nil {
		return nil, err
	}
	ref, err := s.exerciseRef(ctx, input.CustomName, input.LibraryExerciseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.tree.exercises.GetByPlanDayIDs(ctx, []primitive.ObjectID{day.ID})
	if err != nil {
		return nil, fmt.Errorf("get day exercises: %w", err)
	}
	sortOrder := 0
	for _, e := range existing {
		if e.SortOrder >= sortOrder {
			sortOrder = e.SortOrder + 1
		}
	}

	exercise := &domain.DayExercise{
		PlanDayID:    day.ID,
		SectionTitle: input.SectionTitle,
		Ref:          ref,
		SetsReps:     input.SetsReps,
		Notes:        input.Notes,
		URL:          input.URL,
		Equipment:    input.Equipment,
		SortOrder:    sortOrder,
		IsHIITMove:   input.IsHIITMove,
	}
	if _, err := s.tree.exercises.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("create day exercise: %w", err)
	}
	return s.resolveOne(ctx, *exercise)
}

// exerciseRef builds a reference from request fields, checking that a
// library id points at an existing entry.
func (s *planService) exerciseRef(ctx context.Context, customName string, libraryID *primitive.ObjectID) (domain.ExerciseRef, error) {
	customName = strings.TrimSpace(customName)
	switch {
	case customName != "" && libraryID != nil:
		return domain.ExerciseRef{}, validationError("set either custom_name or library_exercise_id, not both")
	case libraryID != nil:
		if _, err := s.library.GetByID(ctx, *libraryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ExerciseRef{}, ErrLibraryExerciseNotFound
			}
			return domain.ExerciseRef{}, fmt.Errorf("get library exercise: %w", err)
		}
		return domain.LibraryExerciseRef(*libraryID), nil
	case customName != "":
		return domain.CustomExercise(customName), nil
	default:
		return domain.ExerciseRef{}, validationError("custom_name or library_exercise_id is required")
	}
}

func (s *planService) UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, update ExerciseUpdate) (*ResolvedExercise, error) {
	exercise, _, err := s.tree.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	if update.CustomName != nil || update.LibraryExerciseID != nil {
		var customName string
		if update.CustomName != nil {
			customName = *update.CustomName
		}
		ref, err := s.exerciseRef(ctx, customName, update.LibraryExerciseID)
		if err != nil {
			return nil, err
		}
		exercise.Ref = ref
	}
	if update.SectionTitle != nil {
		exercise.SectionTitle = *update.SectionTitle
	}
	if update.SetsReps != nil {
		exercise.SetsReps = *update.SetsReps
	}
	if update.Notes != nil {
		exercise.Notes = *update.Notes
	}
	if update.URL != nil {
		exercise.URL = *update.URL
	}
	if update.Equipment != nil {
		exercise.Equipment = *update.Equipment
	}
	if update.SortOrder != nil {
		exercise.SortOrder = *update.SortOrder
	}
	if update.IsHIITMove != nil {
		exercise.IsHIITMove = *update.IsHIITMove
	}

	if err := s.tree.exercises.Update(ctx, exercise); err != nil {
		return nil, fmt.Errorf("update day exercise: %w", err)
	}
	return s.resolveOne(ctx, *exercise)
}

func (s *planService) DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if _, _, err := s.tree.ownedExercise(ctx, userID, exerciseID); err != nil {
		return err
	}
	if err := s.tree.exercises.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDayExerciseNotFound
		}
		return fmt.Errorf("delete day exercise: %w", err)
	}
	return nil
}

func (s *planService) ExerciseDisplayName(ctx context.Context, userID, exerciseID primitive.ObjectID) (string, error) {
	exercise, _, err := s.tree.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return "", err
	}
	return s.tree.resolver.DisplayName(ctx, *exercise)
}

func (s *planService) resolveOne(ctx context.Context, exercise domain.DayExercise) (*ResolvedExercise, error) {
	resolved, err := s.tree.resolver.Resolve(ctx, []domain.DayExercise{exercise})
	if err != nil {
		return nil, err
	}
	return &resolved[0], nil
}

// ExportPlan writes the plan tree as JSON to object storage and returns a
// presigned download link.
func (s *planService) ExportPlan(ctx context.Context, userID, planID primitive.ObjectID) (*PlanExportResult, error) {
	if s.storage == nil {
		return nil, ErrBackendUnavailable
	}
	plan, err := s.tree.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	detail, err := s.tree.detail(ctx, plan)
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(NewPlanDocument(detail), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s/%s.json", userID.Hex(), planID.Hex(), uuid.NewString())
	if err := s.storage.PutObject(ctx, objectKey, "application/json", body); err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	export := &domain.PlanExport{
		PlanID:    planID,
		OwnerID:   userID,
		ObjectKey: objectKey,
		Size:      int64(len(body)),
	}
	if _, err := s.exports.Create(ctx, export); err != nil {
		if delErr := s.storage.DeleteObject(context.WithoutCancel(ctx), objectKey); delErr != nil {
			log.Errorf("remove orphaned export %s: %s", objectKey, delErr)
		}
		return nil, fmt.Errorf("record export: %w", err)
	}

	url, err := s.storage.GeneratePresignedDownloadURL(ctx, objectKey, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	s.metrics.CounterPlanExports.Inc()

	ttl := s.presignTTL
	if ttl <= 0 {
		ttl = storage.DefaultPresignedURLExpiry
	}
	return &PlanExportResult{
		Export:      *export,
		DownloadURL: url,
		ExpiresAt:   time.Now().UTC().Add(ttl),
	}, nil
}

func (s *planService) ListExports(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.PlanExport, error) {
	if _, err := s.tree.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	exports, err := s.exports.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return exports, nil
}
