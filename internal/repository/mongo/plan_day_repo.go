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

const planDayCollectionName = "plan_days"

// mongoPlanDayRepository implements repository.PlanDayRepository
type mongoPlanDayRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanDayRepository creates a new PlanDay repository.
func NewMongoPlanDayRepository(db *mongo.Database) repository.PlanDayRepository {
	return &mongoPlanDayRepository{
		collection: db.Collection(planDayCollectionName),
	}
}

// Create inserts a new day. The (planId, dayNumber) unique index rejects a
// second day with the same number.
func (r *mongoPlanDayRepository) Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	if day.PlanID == primitive.NilObjectID || !domain.ValidDayNumber(day.DayNumber) {
		return primitive.NilObjectID, errors.New("plan day requires planId and a day number between 1 and 7")
	}
	day.ID = primitive.NewObjectID()
	day.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves a single day by its ID.
func (r *mongoPlanDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanDay, error) {
	var day domain.PlanDay
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetByPlanID retrieves the days of a plan ordered by day number.
func (r *mongoPlanDayRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	days := []domain.PlanDay{}
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// Update writes the editable day fields. planId and dayNumber are fixed.
func (r *mongoPlanDayRepository) Update(ctx context.Context, day *domain.PlanDay) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("plan day ID is required for update")
	}
	set := bson.M{
		"type":     day.Type,
		"name":     day.Name,
		"duration": day.Duration,
	}
	unset := bson.M{}
	optional := map[string]*string{
		"restContent":   day.RestContent,
		"hiitStructure": day.HIITStructure,
		"hiitNote":      day.HIITNote,
	}
	for field, v := range optional {
		if v == nil {
			unset[field] = ""
		} else {
			set[field] = *v
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": day.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanDayRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsurePlanDayIndexes creates necessary indexes. Call during startup.
func EnsurePlanDayIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One row per day number within a plan
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
