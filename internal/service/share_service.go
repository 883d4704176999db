package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/metrics"
	"weeklygrind/plan-tracker/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultShareTTL = 7 * 24 * time.Hour
	// 128 bits of randomness, hex encoded.
	shareTokenBytes = 16
	// token collisions are astronomically unlikely; a few retries cover a
	// broken random source without looping forever.
	maxTokenAttempts = 3
	copySuffix       = " (copy)"
)

// ShareLink is an issued share token and the URL to hand out.
type ShareLink struct {
	URL       string
	Token     string
	ExpiresAt time.Time
}

// SharePreview is the read-only snapshot shown before a share is accepted.
type SharePreview struct {
	Plan      *PlanDetail
	ExpiresAt time.Time
}

// ShareService implements the share/fork protocol: an owner issues a
// single-use token, anyone may preview it, and an authenticated user may
// accept it to receive a private copy of the plan as their active plan.
type ShareService interface {
	Issue(ctx context.Context, userID, planID primitive.ObjectID) (*ShareLink, error)
	Preview(ctx context.Context, token string) (*SharePreview, error)
	// Accept forks the shared plan and returns the new plan's id.
	Accept(ctx context.Context, userID primitive.ObjectID, token string) (primitive.ObjectID, error)
}

type shareService struct {
	tree       *planTree
	tokens     repository.ShareTokenRepository
	userPlans  repository.UserPlanRepository
	transactor repository.Transactor
	metrics    *metrics.Manager
	publicURL  string
	ttl        time.Duration
	now        func() time.Time
	randRead   func([]byte) (int, error)
}

// NewShareService builds share links as publicURL + "/s/" + token.
func NewShareService(
	repos *repository.Repositories,
	resolver *ExerciseNameResolver,
	publicURL string,
	ttl time.Duration,
	metricsManager *metrics.Manager,
) ShareService {
	if ttl <= 0 {
		ttl = DefaultShareTTL
	}
	return &shareService{
		tree:       newPlanTree(repos, resolver),
		tokens:     repos.ShareTokens,
		userPlans:  repos.UserPlans,
		transactor: repos.Transactor,
		metrics:    metricsManager,
		publicURL:  publicURL,
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
		randRead:   rand.Read,
	}
}

func (s *shareService) newToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := s.randRead(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *shareService) Issue(ctx context.Context, userID, planID primitive.ObjectID) (*ShareLink, error) {
	if _, err := s.tree.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}

	now := s.now()
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		value, err := s.newToken()
		if err != nil {
			return nil, err
		}
		token := &domain.ShareToken{
			Token:     value,
			PlanID:    planID,
			CreatedBy: userID,
			ExpiresAt: now.Add(s.ttl),
			CreatedAt: now,
		}
		err = s.tokens.Create(ctx, token)
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warnf("share token collision on attempt %d", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store share token: %w", err)
		}

		s.metrics.CounterSharesIssued.Inc()
		return &ShareLink{
			URL:       s.publicURL + "/s/" + value,
			Token:     value,
			ExpiresAt: token.ExpiresAt,
		}, nil
	}
	return nil, fmt.Errorf("store share token: %w", repository.ErrDuplicate)
}

// Preview never mutates the token.
func (s *shareService) Preview(ctx context.Context, token string) (*SharePreview, error) {
	shareToken, err := s.usableToken(ctx, token)
	if err != nil {
		return nil, err
	}
	plan, err := s.tree.plans.GetByID(ctx, shareToken.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShareInvalid
		}
		return nil, fmt.Errorf("get shared plan: %w", err)
	}
	detail, err := s.tree.detail(ctx, plan)
	if err != nil {
		return nil, err
	}
	return &SharePreview{Plan: detail, ExpiresAt: shareToken.ExpiresAt}, nil
}

func (s *shareService) usableToken(ctx context.Context, token string) (*domain.ShareToken, error) {
	if token == "" {
		return nil, ErrShareInvalid
	}
	shareToken, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShareInvalid
		}
		return nil, fmt.Errorf("get share token: %w", err)
	}
	if !shareToken.Usable(s.now()) {
		return nil, ErrShareInvalid
	}
	return shareToken, nil
}

// Accept claims the token, copies the plan tree for userID and makes the
// copy the user's active plan. Claiming first means two concurrent accepts
// of one token cannot both fork. Without transactions a failure after the
// claim deletes the partial copy and releases the token.
func (s *shareService) Accept(ctx context.Context, userID primitive.ObjectID, token string) (primitive.ObjectID, error) {
	if token == "" {
		return primitive.NilObjectID, validationError("token is required")
	}

	var newPlanID primitive.ObjectID
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var (
			claimed bool
			copied  *domain.Plan
		)
		err := s.fork(ctx, userID, token, &claimed, &copied)
		if err != nil && !s.transactor.Atomic() {
			s.compensate(ctx, userID, token, claimed, copied)
		}
		if err == nil {
			newPlanID = copied.ID
		}
		return err
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.metrics.CounterSharesAccepted.Inc()
	log.Debugf("user %s accepted share, new plan %s", userID.Hex(), newPlanID.Hex())
	return newPlanID, nil
}

func (s *shareService) fork(ctx context.Context, userID primitive.ObjectID, token string, claimed *bool, copied **domain.Plan) error {
	shareToken, err := s.tokens.Claim(ctx, token, userID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShareInvalid
		}
		return fmt.Errorf("claim share token: %w", err)
	}
	*claimed = true

	source, err := s.tree.plans.GetByID(ctx, shareToken.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShareInvalid
		}
		return fmt.Errorf("get shared plan: %w", err)
	}
	days, exercises, err := s.tree.contents(ctx, source.ID)
	if err != nil {
		return err
	}

	*copied, err = s.tree.create(ctx, userID, source.Name+copySuffix, source.EquipmentTags, copyBlueprints(days, exercises))
	if err != nil {
		return err
	}

	if _, err := s.userPlans.Upsert(ctx, userID, (*copied).ID); err != nil {
		return fmt.Errorf("activate copied plan: %w", err)
	}
	return nil
}

func (s *shareService) compensate(ctx context.Context, userID primitive.ObjectID, token string, claimed bool, copied *domain.Plan) {
	ctx = context.WithoutCancel(ctx)
	if copied != nil {
		if err := s.tree.remove(ctx, copied.ID); err != nil {
			log.Errorf("remove partial fork %s: %s", copied.ID.Hex(), err)
		}
	}
	if claimed {
		if err := s.tokens.Release(ctx, token, userID); err != nil {
			log.Errorf("release share token: %s", err)
		}
	}
}
