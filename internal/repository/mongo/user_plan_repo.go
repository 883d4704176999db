package mongo

import (
	"context"
	"errors"
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userPlanCollectionName = "user_plans"

// mongoUserPlanRepository implements repository.UserPlanRepository
type mongoUserPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoUserPlanRepository creates a new UserPlan repository.
func NewMongoUserPlanRepository(db *mongo.Database) repository.UserPlanRepository {
	return &mongoUserPlanRepository{
		collection: db.Collection(userPlanCollectionName),
	}
}

func (r *mongoUserPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserPlan, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *mongoUserPlanRepository) findOne(ctx context.Context, filter bson.M) (*domain.UserPlan, error) {
	var userPlan domain.UserPlan
	err := r.collection.FindOne(ctx, filter).Decode(&userPlan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &userPlan, nil
}

// Upsert binds the user to planID and resets the day pointer. Two racing
// upserts for a new user collide on the userId unique index; the loser
// retries once and then matches the winner's document.
func (r *mongoUserPlanRepository) Upsert(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error) {
	userPlan, err := r.upsert(ctx, userID, planID)
	if mongo.IsDuplicateKeyError(err) {
		userPlan, err = r.upsert(ctx, userID, planID)
	}
	return userPlan, err
}

func (r *mongoUserPlanRepository) upsert(ctx context.Context, userID, planID primitive.ObjectID) (*domain.UserPlan, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"planId":          planID,
			"currentDayIndex": 1,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var userPlan domain.UserPlan
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&userPlan); err != nil {
		return nil, err
	}
	return &userPlan, nil
}

// AdvanceDay computes (currentDayIndex mod 7) + 1 on the server so two
// concurrent completions each advance the pointer exactly once.
func (r *mongoUserPlanRepository) AdvanceDay(ctx context.Context, id primitive.ObjectID) (*domain.UserPlan, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "currentDayIndex", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$mod", Value: bson.A{"$currentDayIndex", domain.DaysPerWeek}}},
				1,
			}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var userPlan domain.UserPlan
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&userPlan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &userPlan, nil
}

// EnsureUserPlanIndexes creates the one-user-plan-per-user index.
func EnsureUserPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
