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

const dayExerciseCollectionName = "day_exercises"

// mongoDayExerciseRepository implements repository.DayExerciseRepository
type mongoDayExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoDayExerciseRepository creates a new DayExercise repository backed by MongoDB.
func NewMongoDayExerciseRepository(db *mongo.Database) repository.DayExerciseRepository {
	return &mongoDayExerciseRepository{
		collection: db.Collection(dayExerciseCollectionName),
	}
}

// Create inserts a new day exercise after checking the exercise reference.
func (r *mongoDayExerciseRepository) Create(ctx context.Context, exercise *domain.DayExercise) (primitive.ObjectID, error) {
	if exercise.PlanDayID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day exercise requires planDayId")
	}
	if err := exercise.Ref.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves a day exercise by its ID.
func (r *mongoDayExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DayExercise, error) {
	var exercise domain.DayExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByPlanDayIDs retrieves all exercises of the given days, ordered by sort order.
func (r *mongoDayExerciseRepository) GetByPlanDayIDs(ctx context.Context, planDayIDs []primitive.ObjectID) ([]domain.DayExercise, error) {
	exercises := []domain.DayExercise{}
	if len(planDayIDs) == 0 {
		return exercises, nil
	}
	filter := bson.M{"planDayId": bson.M{"$in": planDayIDs}}
	findOptions := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies an existing day exercise. planDayId is not changed.
func (r *mongoDayExerciseRepository) Update(ctx context.Context, exercise *domain.DayExercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("day exercise ID is required for update")
	}
	if err := exercise.Ref.Validate(); err != nil {
		return err
	}
	exercise.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"sectionTitle": exercise.SectionTitle,
			"ref":          exercise.Ref,
			"setsReps":     exercise.SetsReps,
			"notes":        exercise.Notes,
			"url":          exercise.URL,
			"equipment":    exercise.Equipment,
			"sortOrder":    exercise.SortOrder,
			"isHiitMove":   exercise.IsHIITMove,
			"updatedAt":    exercise.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDayExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDayExerciseRepository) DeleteByPlanDayIDs(ctx context.Context, planDayIDs []primitive.ObjectID) error {
	if len(planDayIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"planDayId": bson.M{"$in": planDayIDs}})
	return err
}

// EnsureDayExerciseIndexes creates necessary indexes for the day_exercises collection.
func EnsureDayExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planDayId", Value: 1}, {Key: "sortOrder", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
