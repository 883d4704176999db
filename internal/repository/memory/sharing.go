package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type shareTokenRepository struct{ s *Store }

func (r *shareTokenRepository) Create(ctx context.Context, token *domain.ShareToken) error {
	if token.Token == "" || token.PlanID == primitive.NilObjectID {
		return errors.New("share token requires token and planId")
	}
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.shareTokens[token.Token]; ok {
		return repository.ErrDuplicate
	}
	token.ID = primitive.NewObjectID()
	token.CreatedAt = time.Now().UTC()
	r.s.data.shareTokens[token.Token] = *token
	return nil
}

func (r *shareTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ShareToken, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.data.shareTokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *shareTokenRepository) Claim(ctx context.Context, token string, userID primitive.ObjectID, now time.Time) (*domain.ShareToken, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.data.shareTokens[token]
	if !ok || !t.Usable(now) {
		return nil, repository.ErrNotFound
	}
	usedAt, usedBy := now.UTC(), userID
	t.UsedAt, t.UsedBy = &usedAt, &usedBy
	r.s.data.shareTokens[token] = t
	return &t, nil
}

func (r *shareTokenRepository) Release(ctx context.Context, token string, userID primitive.ObjectID) error {
	defer r.s.lock(ctx)()
	t, ok := r.s.data.shareTokens[token]
	if !ok || t.UsedBy == nil || *t.UsedBy != userID {
		return repository.ErrNotFound
	}
	t.UsedAt, t.UsedBy = nil, nil
	r.s.data.shareTokens[token] = t
	return nil
}

type exportRepository struct{ s *Store }

func (r *exportRepository) Create(ctx context.Context, export *domain.PlanExport) (primitive.ObjectID, error) {
	if export.PlanID == primitive.NilObjectID || export.OwnerID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("plan export requires planId, ownerId and objectKey")
	}
	defer r.s.lock(ctx)()
	export.ID = primitive.NewObjectID()
	export.CreatedAt = time.Now().UTC()
	r.s.data.exports[export.ID] = *export
	return export.ID, nil
}

func (r *exportRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanExport, error) {
	defer r.s.lock(ctx)()
	exports := []domain.PlanExport{}
	for _, e := range r.s.data.exports {
		if e.PlanID == planID {
			exports = append(exports, e)
		}
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].CreatedAt.After(exports[j].CreatedAt) })
	return exports, nil
}
