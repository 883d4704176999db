package service_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var shareURLPattern = regexp.MustCompile(`^` + regexp.QuoteMeta(testPublicURL) + `/s/([0-9a-f]{32})$`)

func TestIssue(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)

	before := time.Now()
	link, err := f.shares.Issue(f.ctx, f.owner, detail.Plan.ID)
	require.NoError(t, err)

	m := shareURLPattern.FindStringSubmatch(link.URL)
	require.NotNil(t, m, link.URL)
	assert.Equal(t, link.Token, m[1])
	assert.WithinDuration(t, before.Add(service.DefaultShareTTL), link.ExpiresAt, time.Minute)

	again, err := f.shares.Issue(f.ctx, f.owner, detail.Plan.ID)
	require.NoError(t, err)
	assert.NotEqual(t, link.Token, again.Token)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CounterSharesIssued))

	_, err = f.shares.Issue(f.ctx, f.other, detail.Plan.ID)
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	link, err := f.shares.Issue(f.ctx, f.owner, detail.Plan.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		preview, err := f.shares.Preview(f.ctx, link.Token)
		require.NoError(t, err)
		assert.Equal(t, detail.Plan.Name, preview.Plan.Plan.Name)
		assert.Len(t, preview.Plan.Days, domain.DaysPerWeek)
	}

	token, err := f.repos.ShareTokens.GetByToken(f.ctx, link.Token)
	require.NoError(t, err)
	assert.Nil(t, token.UsedAt)
}

func TestPreview_ExpiredLooksLikeUnknown(t *testing.T) {
	f := newFixture(t)
	detail := f.defaultPlan(t, f.owner)
	expired := storeToken(t, f, detail.Plan.ID, time.Now().Add(-time.Second))

	_, expiredErr := f.shares.Preview(f.ctx, expired)
	_, unknownErr := f.shares.Preview(f.ctx, "0123456789abcdef0123456789abcdef")
	_, emptyErr := f.shares.Preview(f.ctx, "")

	require.ErrorIs(t, expiredErr, service.ErrShareInvalid)
	assert.Equal(t, unknownErr, expiredErr)
	assert.Equal(t, emptyErr, expiredErr)
}

func TestAccept_ForksPlan(t *testing.T) {
	f := newFixture(t)
	source := f.defaultPlan(t, f.owner)
	entry := f.libraryEntry(t, "Turkish Get-up", "Kettlebell")
	_, err := f.plans.AddExercise(f.ctx, f.owner, dayOf(t, source, 5).Day.ID, service.NewExercise{
		SectionTitle:      "Extra",
		LibraryExerciseID: &entry.ID,
		URL:               "https://example.com/tgu",
		Equipment:         "Kettlebell",
	})
	require.NoError(t, err)
	source, err = f.plans.GetPlan(f.ctx, f.owner, source.Plan.ID)
	require.NoError(t, err)

	// the accepting user has progress on an older plan
	_, oldUserPlan := f.activePlan(t, f.other)
	_, err = f.tracker.CompleteDay(f.ctx, f.other, oldUserPlan.ID, 1)
	require.NoError(t, err)

	link, err := f.shares.Issue(f.ctx, f.owner, source.Plan.ID)
	require.NoError(t, err)
	newPlanID, err := f.shares.Accept(f.ctx, f.other, link.Token)
	require.NoError(t, err)

	fork, err := f.plans.GetPlan(f.ctx, f.other, newPlanID)
	require.NoError(t, err)
	assert.Equal(t, source.Plan.Name+" (copy)", fork.Plan.Name)
	assert.Equal(t, source.Plan.EquipmentTags, fork.Plan.EquipmentTags)
	assert.Equal(t, f.other, fork.Plan.OwnerID)
	assertSameTree(t, source, fork)

	view, err := f.tracker.ActivePlan(f.ctx, f.other)
	require.NoError(t, err)
	assert.Equal(t, newPlanID, view.UserPlan.PlanID)
	assert.Equal(t, 1, view.UserPlan.CurrentDayIndex)

	// the source is untouched and still the owner's
	unchanged, err := f.plans.GetPlan(f.ctx, f.owner, source.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, source.Plan.Name, unchanged.Plan.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSharesAccepted))
}

func assertSameTree(t *testing.T, source, fork *service.PlanDetail) {
	t.Helper()
	require.Len(t, fork.Days, len(source.Days))
	for i, sd := range source.Days {
		fd := fork.Days[i]
		assert.NotEqual(t, sd.Day.ID, fd.Day.ID)
		assert.Equal(t, fork.Plan.ID, fd.Day.PlanID)
		assert.Equal(t, sd.Day.DayNumber, fd.Day.DayNumber)
		assert.Equal(t, sd.Day.Type, fd.Day.Type)
		assert.Equal(t, sd.Day.Name, fd.Day.Name)
		assert.Equal(t, sd.Day.Duration, fd.Day.Duration)
		assert.Equal(t, sd.Day.RestContent, fd.Day.RestContent)
		assert.Equal(t, sd.Day.HIITStructure, fd.Day.HIITStructure)
		assert.Equal(t, sd.Day.HIITNote, fd.Day.HIITNote)

		require.Len(t, fd.Exercises, len(sd.Exercises), "day %d", sd.Day.DayNumber)
		for j, se := range sd.Exercises {
			fe := fd.Exercises[j]
			assert.NotEqual(t, se.ID, fe.ID)
			assert.Equal(t, fd.Day.ID, fe.PlanDayID)
			assert.Equal(t, se.Ref, fe.Ref)
			assert.Equal(t, se.DisplayName, fe.DisplayName)
			assert.Equal(t, se.SectionTitle, fe.SectionTitle)
			assert.Equal(t, se.SetsReps, fe.SetsReps)
			assert.Equal(t, se.Notes, fe.Notes)
			assert.Equal(t, se.URL, fe.URL)
			assert.Equal(t, se.Equipment, fe.Equipment)
			assert.Equal(t, se.SortOrder, fe.SortOrder)
			assert.Equal(t, se.IsHIITMove, fe.IsHIITMove)
		}
	}
}

func TestAccept_SingleUse(t *testing.T) {
	f := newFixture(t)
	source := f.defaultPlan(t, f.owner)
	link, err := f.shares.Issue(f.ctx, f.owner, source.Plan.ID)
	require.NoError(t, err)

	_, err = f.shares.Accept(f.ctx, f.other, link.Token)
	require.NoError(t, err)

	_, err = f.shares.Accept(f.ctx, f.other, link.Token)
	assert.ErrorIs(t, err, service.ErrShareInvalid)
	_, err = f.shares.Accept(f.ctx, primitive.NewObjectID(), link.Token)
	assert.ErrorIs(t, err, service.ErrShareInvalid)
	_, err = f.shares.Preview(f.ctx, link.Token)
	assert.ErrorIs(t, err, service.ErrShareInvalid)

	plans, err := f.plans.ListPlans(f.ctx, f.other)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestAccept_ConcurrentAcceptsForkOnce(t *testing.T) {
	f := newFixture(t)
	source := f.defaultPlan(t, f.owner)
	link, err := f.shares.Issue(f.ctx, f.owner, source.Plan.ID)
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.shares.Accept(f.ctx, f.other, link.Token); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, service.ErrShareInvalid)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	plans, err := f.plans.ListPlans(f.ctx, f.other)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestAccept_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	source := f.defaultPlan(t, f.owner)
	expired := storeToken(t, f, source.Plan.ID, time.Now().Add(-time.Minute))

	_, err := f.shares.Accept(f.ctx, f.other, expired)
	assert.ErrorIs(t, err, service.ErrShareInvalid)

	_, err = f.shares.Accept(f.ctx, f.other, "")
	assert.ErrorIs(t, err, service.ErrValidationFailed)
}

// flakyUserPlans fails the next armed Upsert.
type flakyUserPlans struct {
	repository.UserPlanRepository
	mu    sync.Mutex
	armed bool
}

var errInjected = errors.New("injected failure")

func (r *flakyUserPlans) arm() {
	r.mu.Lock()
	r.armed = true
	r.mu.Unlock()
}

func (r *flakyUserPlans) Upsert(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error) {
	r.mu.Lock()
	armed := r.armed
	r.armed = false
	r.mu.Unlock()
	if armed {
		return nil, errInjected
	}
	return r.UserPlanRepository.Upsert(ctx, userID, planID)
}

func TestAccept_FailureLeavesNoPartialFork(t *testing.T) {
	tests := []struct {
		name string
		opts []fixtureOption
	}{
		{name: "transaction rolls back"},
		{name: "compensation cleans up", opts: []fixtureOption{withoutTransactions()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flaky := &flakyUserPlans{}
			opts := append(tt.opts, withRepos(func(repos *repository.Repositories) {
				flaky.UserPlanRepository = repos.UserPlans
				repos.UserPlans = flaky
			}))
			f := newFixture(t, opts...)
			source := f.defaultPlan(t, f.owner)
			link, err := f.shares.Issue(f.ctx, f.owner, source.Plan.ID)
			require.NoError(t, err)

			flaky.arm()
			_, err = f.shares.Accept(f.ctx, f.other, link.Token)
			require.ErrorIs(t, err, errInjected)

			plans, err := f.plans.ListPlans(f.ctx, f.other)
			require.NoError(t, err)
			assert.Empty(t, plans)
			token, err := f.repos.ShareTokens.GetByToken(f.ctx, link.Token)
			require.NoError(t, err)
			assert.Nil(t, token.UsedAt)
			assert.Nil(t, token.UsedBy)

			// the released token can still be accepted
			newPlanID, err := f.shares.Accept(f.ctx, f.other, link.Token)
			require.NoError(t, err)
			view, err := f.tracker.ActivePlan(f.ctx, f.other)
			require.NoError(t, err)
			assert.Equal(t, newPlanID, view.UserPlan.PlanID)
		})
	}
}

func storeToken(t *testing.T, f *fixture, planID primitive.ObjectID, expiresAt time.Time) string {
	t.Helper()
	token := &domain.ShareToken{
		Token:     primitive.NewObjectID().Hex() + "abcdefgh",
		PlanID:    planID,
		CreatedBy: f.owner,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.repos.ShareTokens.Create(f.ctx, token))
	return token.Token
}
