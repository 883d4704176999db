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

const planExportCollectionName = "plan_exports"

// mongoPlanExportRepository implements repository.PlanExportRepository
type mongoPlanExportRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanExportRepository creates a new PlanExport repository backed by MongoDB.
func NewMongoPlanExportRepository(db *mongo.Database) repository.PlanExportRepository {
	return &mongoPlanExportRepository{
		collection: db.Collection(planExportCollectionName),
	}
}

// Create inserts export metadata after the object has been written.
func (r *mongoPlanExportRepository) Create(ctx context.Context, export *domain.PlanExport) (primitive.ObjectID, error) {
	if export.PlanID == primitive.NilObjectID || export.OwnerID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("plan export requires planId, ownerId and objectKey")
	}
	export.ID = primitive.NewObjectID()
	export.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, export)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoPlanExportRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanExport, error) {
	exports := []domain.PlanExport{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

// EnsurePlanExportIndexes creates necessary indexes for the plan_exports collection.
func EnsurePlanExportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
