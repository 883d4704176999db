package repository

import (
	"context"
	"time"

	"weeklygrind/plan-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// PlanRepository stores plan headers. Days and exercises live in their own
// repositories.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// GetByOwnerID returns the owner's plans, newest first.
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Plan, error)
	// Update writes name and equipment tags. The owner never changes.
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PlanDayRepository interface {
	// Create returns ErrDuplicate when the plan already has that day number.
	Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanDay, error)
	// GetByPlanID returns the days ordered by day number.
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error)
	Update(ctx context.Context, day *domain.PlanDay) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

type DayExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.DayExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DayExercise, error)
	// GetByPlanDayIDs returns the exercises of the given days ordered by sort order.
	GetByPlanDayIDs(ctx context.Context, planDayIDs []primitive.ObjectID) ([]domain.DayExercise, error)
	Update(ctx context.Context, exercise *domain.DayExercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlanDayIDs(ctx context.Context, planDayIDs []primitive.ObjectID) error
}

// LibraryFilter narrows a library listing. Equipment matches as a
// case-insensitive substring.
type LibraryFilter struct {
	Category  string
	Equipment string
}

type ExerciseLibraryRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error)
	// GetByIDs silently skips ids that do not exist.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.LibraryExercise, error)
	// List returns matching entries ordered by name.
	List(ctx context.Context, filter LibraryFilter) ([]domain.LibraryExercise, error)
	DistinctEquipment(ctx context.Context) ([]string, error)
	// Upsert inserts or replaces the entry with the same name.
	Upsert(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error)
}

type UserPlanRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserPlan, error)
	// Upsert binds userID to planID, creating the user plan if needed, and
	// resets the day pointer to 1.
	Upsert(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error)
	// AdvanceDay moves the day pointer one step around the week in a single
	// write and returns the updated user plan.
	AdvanceDay(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error)
}

// CompletionRepository keeps at most one in-progress completion per
// (user plan, day number).
type CompletionRepository interface {
	// AddExercise finds or creates the in-progress completion and adds the
	// exercise to its checklist. Adding twice is a no-op.
	AddExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) (*domain.Completion, error)
	// RemoveExercise only touches the in-progress completion. A missing
	// completion or exercise is not an error.
	RemoveExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error
	// Finalize stamps the in-progress completion with at, or records a new
	// finalized completion with an empty checklist when none is open.
	Finalize(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, at time.Time) (*domain.Completion, error)
	// GetByUserPlanID returns in-progress completions first, then finalized
	// ones by completion time, newest first.
	GetByUserPlanID(ctx context.Context, userPlanID primitive.ObjectID) ([]domain.Completion, error)
}

type ShareTokenRepository interface {
	// Create returns ErrDuplicate on a token collision.
	Create(ctx context.Context, token *domain.ShareToken) error
	GetByToken(ctx context.Context, token string) (*domain.ShareToken, error)
	// Claim marks the token used by userID if it is unused and unexpired at
	// now. It returns ErrNotFound when the token cannot be claimed.
	Claim(ctx context.Context, token string, userID primitive.ObjectID, now time.Time) (*domain.ShareToken, error)
	// Release undoes a Claim made by userID.
	Release(ctx context.Context, token string, userID primitive.ObjectID) error
}

type PlanExportRepository interface {
	Create(ctx context.Context, export *domain.PlanExport) (primitive.ObjectID, error)
	// GetByPlanID returns the exports of a plan, newest first.
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanExport, error)
}

// Transactor runs fn so that the repository calls made with the ctx it
// receives commit or roll back together. When Atomic reports false the
// backend cannot roll back and callers must compensate on failure.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Users        UserRepository
	Plans        PlanRepository
	PlanDays     PlanDayRepository
	DayExercises DayExerciseRepository
	Library      ExerciseLibraryRepository
	UserPlans    UserPlanRepository
	Completions  CompletionRepository
	ShareTokens  ShareTokenRepository
	Exports      PlanExportRepository
	Transactor   Transactor
}
