// Package repotest holds the behaviour every repository backend must share.
// Backends run ContractSuite from their own tests.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContractSuite checks a repository backend. NewRepositories must return
// repositories over empty storage on every call.
type ContractSuite struct {
	suite.Suite

	NewRepositories func(t *testing.T) *repository.Repositories

	ctx   context.Context
	repos *repository.Repositories
}

func (s *ContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = s.NewRepositories(s.T())
}

func (s *ContractSuite) TestUserEmailIsUnique() {
	users := s.repos.Users
	id, err := users.Create(s.ctx, &domain.User{Email: "Lifter@Example.com", PasswordHash: "x"})
	s.Require().NoError(err)

	got, err := users.GetByEmail(s.ctx, "lifter@example.com")
	s.Require().NoError(err)
	s.Equal(id, got.ID)

	_, err = users.Create(s.ctx, &domain.User{Email: "lifter@example.com", PasswordHash: "y"})
	s.ErrorIs(err, repository.ErrDuplicate)

	_, err = users.GetByID(s.ctx, primitive.NewObjectID())
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *ContractSuite) TestPlanTree() {
	owner := primitive.NewObjectID()
	plan := &domain.Plan{OwnerID: owner, Name: "Week", EquipmentTags: []string{"Bands"}}
	planID, err := s.repos.Plans.Create(s.ctx, plan)
	s.Require().NoError(err)

	for _, n := range []int{3, 1, 2} {
		_, err := s.repos.PlanDays.Create(s.ctx, &domain.PlanDay{PlanID: planID, DayNumber: n, Type: domain.DayTypeUpper})
		s.Require().NoError(err)
	}
	_, err = s.repos.PlanDays.Create(s.ctx, &domain.PlanDay{PlanID: planID, DayNumber: 2, Type: domain.DayTypeRest})
	s.ErrorIs(err, repository.ErrDuplicate)

	days, err := s.repos.PlanDays.GetByPlanID(s.ctx, planID)
	s.Require().NoError(err)
	s.Require().Len(days, 3)
	s.Equal([]int{1, 2, 3}, []int{days[0].DayNumber, days[1].DayNumber, days[2].DayNumber})

	for _, order := range []int{2, 0, 1} {
		_, err := s.repos.DayExercises.Create(s.ctx, &domain.DayExercise{
			PlanDayID: days[0].ID,
			Ref:       domain.CustomExercise("Move"),
			SortOrder: order,
		})
		s.Require().NoError(err)
	}
	_, err = s.repos.DayExercises.Create(s.ctx, &domain.DayExercise{PlanDayID: days[0].ID})
	s.Error(err, "an exercise without a reference is rejected")

	exercises, err := s.repos.DayExercises.GetByPlanDayIDs(s.ctx, []primitive.ObjectID{days[0].ID})
	s.Require().NoError(err)
	s.Require().Len(exercises, 3)
	for i, e := range exercises {
		s.Equal(i, e.SortOrder)
	}

	libraryID := primitive.NewObjectID()
	swapped := exercises[0]
	swapped.Ref = domain.LibraryExerciseRef(libraryID)
	s.Require().NoError(s.repos.DayExercises.Update(s.ctx, &swapped))
	got, err := s.repos.DayExercises.GetByID(s.ctx, swapped.ID)
	s.Require().NoError(err)
	id, ok := got.Ref.LibraryID()
	s.True(ok)
	s.Equal(libraryID, id)
	_, isCustom := got.Ref.CustomName()
	s.False(isCustom)

	plans, err := s.repos.Plans.GetByOwnerID(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(plans, 1)

	dayIDs := []primitive.ObjectID{days[0].ID, days[1].ID, days[2].ID}
	s.Require().NoError(s.repos.DayExercises.DeleteByPlanDayIDs(s.ctx, dayIDs))
	s.Require().NoError(s.repos.PlanDays.DeleteByPlanID(s.ctx, planID))
	s.Require().NoError(s.repos.Plans.Delete(s.ctx, planID))
	_, err = s.repos.Plans.GetByID(s.ctx, planID)
	s.ErrorIs(err, repository.ErrNotFound)
	exercises, err = s.repos.DayExercises.GetByPlanDayIDs(s.ctx, dayIDs)
	s.Require().NoError(err)
	s.Empty(exercises)
}

func (s *ContractSuite) TestLibrary() {
	lib := s.repos.Library
	for _, e := range []domain.LibraryExercise{
		{Name: "Swing", Category: "power", Equipment: "Kettlebell"},
		{Name: "Band Row", Category: "strength", Equipment: "Resistance Bands"},
		{Name: "Goblet Squat", Category: "strength", Equipment: "kettlebell"},
	} {
		_, err := lib.Upsert(s.ctx, &e)
		s.Require().NoError(err)
	}
	// upsert by name replaces
	replaced := domain.LibraryExercise{Name: "Swing", Category: "power", Equipment: "Kettlebell (24kg)"}
	_, err := lib.Upsert(s.ctx, &replaced)
	s.Require().NoError(err)

	all, err := lib.List(s.ctx, repository.LibraryFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"Band Row", "Goblet Squat", "Swing"}, names(all))

	kettlebell, err := lib.List(s.ctx, repository.LibraryFilter{Equipment: "KETTLE"})
	s.Require().NoError(err)
	s.Equal([]string{"Goblet Squat", "Swing"}, names(kettlebell))

	strength, err := lib.List(s.ctx, repository.LibraryFilter{Category: "strength", Equipment: "band"})
	s.Require().NoError(err)
	s.Equal([]string{"Band Row"}, names(strength))

	equipment, err := lib.DistinctEquipment(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"Kettlebell (24kg)", "Resistance Bands", "kettlebell"}, equipment)

	byIDs, err := lib.GetByIDs(s.ctx, []primitive.ObjectID{replaced.ID, primitive.NewObjectID()})
	s.Require().NoError(err)
	s.Require().Len(byIDs, 1)
	s.Equal("Swing", byIDs[0].Name)
}

func names(exercises []domain.LibraryExercise) []string {
	out := make([]string, len(exercises))
	for i, e := range exercises {
		out[i] = e.Name
	}
	return out
}

func (s *ContractSuite) TestUserPlanUpsertAndAdvance() {
	user := primitive.NewObjectID()
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	up, err := s.repos.UserPlans.Upsert(s.ctx, user, first)
	s.Require().NoError(err)
	s.Equal(1, up.CurrentDayIndex)

	for want := 2; want <= 7; want++ {
		up, err = s.repos.UserPlans.AdvanceDay(s.ctx, up.ID)
		s.Require().NoError(err)
		s.Equal(want, up.CurrentDayIndex)
	}
	up, err = s.repos.UserPlans.AdvanceDay(s.ctx, up.ID)
	s.Require().NoError(err)
	s.Equal(1, up.CurrentDayIndex, "day 7 wraps to 1")

	_, err = s.repos.UserPlans.AdvanceDay(s.ctx, up.ID)
	s.Require().NoError(err)
	rebound, err := s.repos.UserPlans.Upsert(s.ctx, user, second)
	s.Require().NoError(err)
	s.Equal(up.ID, rebound.ID)
	s.Equal(second, rebound.PlanID)
	s.Equal(1, rebound.CurrentDayIndex)

	got, err := s.repos.UserPlans.GetByUserID(s.ctx, user)
	s.Require().NoError(err)
	s.Equal(rebound.ID, got.ID)

	_, err = s.repos.UserPlans.AdvanceDay(s.ctx, primitive.NewObjectID())
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repos.UserPlans.GetByUserID(s.ctx, primitive.NewObjectID())
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *ContractSuite) TestCompletionLifecycle() {
	completions := s.repos.Completions
	userPlanID := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	for i := 0; i < 2; i++ {
		_, err := completions.AddExercise(s.ctx, userPlanID, 1, a)
		s.Require().NoError(err)
	}
	open, err := completions.AddExercise(s.ctx, userPlanID, 1, b)
	s.Require().NoError(err)
	s.Equal(domain.CompletionInProgress, open.State())
	s.ElementsMatch([]primitive.ObjectID{a, b}, open.ExerciseIDs)

	s.Require().NoError(completions.RemoveExercise(s.ctx, userPlanID, 1, a))
	s.Require().NoError(completions.RemoveExercise(s.ctx, userPlanID, 2, a), "nothing open on day 2")

	at := time.Now().UTC().Truncate(time.Millisecond)
	finalized, err := completions.Finalize(s.ctx, userPlanID, 1, at)
	s.Require().NoError(err)
	s.Equal(open.ID, finalized.ID)
	s.Equal(domain.CompletionFinalized, finalized.State())
	s.Equal([]primitive.ObjectID{b}, finalized.ExerciseIDs)

	// removal after finalization never touches the finalized checklist
	s.Require().NoError(completions.RemoveExercise(s.ctx, userPlanID, 1, b))

	reopened, err := completions.AddExercise(s.ctx, userPlanID, 1, a)
	s.Require().NoError(err)
	s.NotEqual(open.ID, reopened.ID)

	empty, err := completions.Finalize(s.ctx, userPlanID, 4, at.Add(time.Second))
	s.Require().NoError(err)
	s.Empty(empty.ExerciseIDs)

	all, err := completions.GetByUserPlanID(s.ctx, userPlanID)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(reopened.ID, all[0].ID, "in-progress first")
	s.Equal(empty.ID, all[1].ID, "then newest finalized")
	s.Equal(finalized.ID, all[2].ID)
	s.Equal([]primitive.ObjectID{b}, all[2].ExerciseIDs)
	s.WithinDuration(at, *all[2].CompletedAt, time.Millisecond)
}

func (s *ContractSuite) TestShareTokenClaim() {
	tokens := s.repos.ShareTokens
	now := time.Now().UTC()
	planID, owner := primitive.NewObjectID(), primitive.NewObjectID()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	live := &domain.ShareToken{Token: "live", PlanID: planID, CreatedBy: owner, ExpiresAt: now.Add(time.Hour)}
	s.Require().NoError(tokens.Create(s.ctx, live))
	s.ErrorIs(tokens.Create(s.ctx, &domain.ShareToken{Token: "live", PlanID: planID, CreatedBy: owner, ExpiresAt: now}), repository.ErrDuplicate)

	expired := &domain.ShareToken{Token: "expired", PlanID: planID, CreatedBy: owner, ExpiresAt: now.Add(-time.Second)}
	s.Require().NoError(tokens.Create(s.ctx, expired))
	_, err := tokens.Claim(s.ctx, "expired", alice, now)
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = tokens.Claim(s.ctx, "missing", alice, now)
	s.ErrorIs(err, repository.ErrNotFound)

	claimed, err := tokens.Claim(s.ctx, "live", alice, now)
	s.Require().NoError(err)
	s.Require().NotNil(claimed.UsedBy)
	s.Equal(alice, *claimed.UsedBy)
	_, err = tokens.Claim(s.ctx, "live", bob, now)
	s.ErrorIs(err, repository.ErrNotFound)

	s.ErrorIs(tokens.Release(s.ctx, "live", bob), repository.ErrNotFound, "only the claimer releases")
	s.Require().NoError(tokens.Release(s.ctx, "live", alice))

	got, err := tokens.GetByToken(s.ctx, "live")
	s.Require().NoError(err)
	s.Nil(got.UsedAt)
	s.True(got.Usable(now))
	_, err = tokens.Claim(s.ctx, "live", bob, now)
	s.NoError(err)
}

func (s *ContractSuite) TestExports() {
	planID, owner := primitive.NewObjectID(), primitive.NewObjectID()
	for _, key := range []string{"exports/a.json", "exports/b.json"} {
		_, err := s.repos.Exports.Create(s.ctx, &domain.PlanExport{PlanID: planID, OwnerID: owner, ObjectKey: key, Size: 10})
		s.Require().NoError(err)
		time.Sleep(2 * time.Millisecond)
	}
	exports, err := s.repos.Exports.GetByPlanID(s.ctx, planID)
	s.Require().NoError(err)
	s.Require().Len(exports, 2)
	s.Equal("exports/b.json", exports[0].ObjectKey)
}

var errRollback = errors.New("rollback")

func (s *ContractSuite) TestTransactionRollsBack() {
	if !s.repos.Transactor.Atomic() {
		s.T().Skip("backend runs without transactions")
	}
	owner := primitive.NewObjectID()
	var planID primitive.ObjectID
	err := s.repos.Transactor.WithinTransaction(s.ctx, func(ctx context.Context) error {
		var err error
		planID, err = s.repos.Plans.Create(ctx, &domain.Plan{OwnerID: owner, Name: "Doomed"})
		s.Require().NoError(err)
		_, err = s.repos.UserPlans.Upsert(ctx, owner, planID)
		s.Require().NoError(err)
		return errRollback
	})
	s.ErrorIs(err, errRollback)

	_, err = s.repos.Plans.GetByID(s.ctx, planID)
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = s.repos.UserPlans.GetByUserID(s.ctx, owner)
	s.ErrorIs(err, repository.ErrNotFound)
}
