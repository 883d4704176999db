// Package memory is an in-process implementation of the repositories. It
// backs database.driver=memory and the service and api tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tables struct {
	users        map[primitive.ObjectID]domain.User
	plans        map[primitive.ObjectID]domain.Plan
	planDays     map[primitive.ObjectID]domain.PlanDay
	dayExercises map[primitive.ObjectID]domain.DayExercise
	library      map[primitive.ObjectID]domain.LibraryExercise
	userPlans    map[primitive.ObjectID]domain.UserPlan
	completions  map[primitive.ObjectID]domain.Completion
	shareTokens  map[string]domain.ShareToken
	exports      map[primitive.ObjectID]domain.PlanExport
}

// clone copies the maps. Stored values are never mutated in place (slices
// are copied on every write) so a shallow copy is a full snapshot.
func (t tables) clone() tables {
	return tables{
		users:        maps.Clone(t.users),
		plans:        maps.Clone(t.plans),
		planDays:     maps.Clone(t.planDays),
		dayExercises: maps.Clone(t.dayExercises),
		library:      maps.Clone(t.library),
		userPlans:    maps.Clone(t.userPlans),
		completions:  maps.Clone(t.completions),
		shareTokens:  maps.Clone(t.shareTokens),
		exports:      maps.Clone(t.exports),
	}
}

// Store holds all tables behind one mutex. Transactions additionally take
// txMu exclusively so no other caller observes or interleaves with a unit
// of work that may still roll back.
type Store struct {
	txMu sync.RWMutex
	mu   sync.Mutex
	data tables
}

func NewStore() *Store {
	return &Store{data: tables{
		users:        map[primitive.ObjectID]domain.User{},
		plans:        map[primitive.ObjectID]domain.Plan{},
		planDays:     map[primitive.ObjectID]domain.PlanDay{},
		dayExercises: map[primitive.ObjectID]domain.DayExercise{},
		library:      map[primitive.ObjectID]domain.LibraryExercise{},
		userPlans:    map[primitive.ObjectID]domain.UserPlan{},
		completions:  map[primitive.ObjectID]domain.Completion{},
		shareTokens:  map[string]domain.ShareToken{},
		exports:      map[primitive.ObjectID]domain.PlanExport{},
	}}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store for one repository call and returns the release func.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.RLock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.RUnlock()
	}
}

type transactor struct {
	s      *Store
	atomic bool
}

// NewTransactor returns a transactor over s. With atomic=false it runs the
// unit of work without rollback, the way a standalone MongoDB behaves.
func NewTransactor(s *Store, atomic bool) repository.Transactor {
	return &transactor{s: s, atomic: atomic}
}

func (t *transactor) Atomic() bool { return t.atomic }

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.atomic || t.s.inTx(ctx) {
		return fn(ctx)
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	snapshot := t.s.data.clone()
	t.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, t.s)); err != nil {
		t.s.mu.Lock()
		t.s.data = snapshot
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// NewRepositories wires every in-memory repository against one store.
func NewRepositories(s *Store, atomic bool) *repository.Repositories {
	return &repository.Repositories{
		Users:        &userRepository{s: s},
		Plans:        &planRepository{s: s},
		PlanDays:     &planDayRepository{s: s},
		DayExercises: &dayExerciseRepository{s: s},
		Library:      &libraryRepository{s: s},
		UserPlans:    &userPlanRepository{s: s},
		Completions:  &completionRepository{s: s},
		ShareTokens:  &shareTokenRepository{s: s},
		Exports:      &exportRepository{s: s},
		Transactor:   NewTransactor(s, atomic),
	}
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
