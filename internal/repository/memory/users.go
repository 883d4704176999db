package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	defer r.s.lock(ctx)()

	email := strings.ToLower(user.Email)
	for _, u := range r.s.data.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.data.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock(ctx)()
	email = strings.ToLower(email)
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
