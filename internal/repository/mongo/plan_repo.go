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

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires ownerId and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.EquipmentTags == nil {
		plan.EquipmentTags = []string{}
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByOwnerID retrieves the owner's plans, newest first.
func (r *mongoPlanRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update writes the mutable header fields. ownerId is never touched.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":          plan.Name,
			"equipmentTags": plan.EquipmentTags,
			"updatedAt":     plan.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Listing a user's plans, newest first
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
