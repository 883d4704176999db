package mongo

import (
	"context"
	"errors"
	"regexp"
	"sort"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseLibraryCollectionName = "exercise_library"

// mongoExerciseLibraryRepository implements repository.ExerciseLibraryRepository
type mongoExerciseLibraryRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseLibraryRepository creates a library repository backed by MongoDB.
func NewMongoExerciseLibraryRepository(db *mongo.Database) repository.ExerciseLibraryRepository {
	return &mongoExerciseLibraryRepository{
		collection: db.Collection(exerciseLibraryCollectionName),
	}
}

// GetByID retrieves a library entry by its ID.
func (r *mongoExerciseLibraryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error) {
	var exercise domain.LibraryExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByIDs fetches many entries with a single $in query.
func (r *mongoExerciseLibraryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.LibraryExercise, error) {
	exercises := []domain.LibraryExercise{}
	if len(ids) == 0 {
		return exercises, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// List returns entries matching the filter ordered by name.
func (r *mongoExerciseLibraryRepository) List(ctx context.Context, filter repository.LibraryFilter) ([]domain.LibraryExercise, error) {
	exercises := []domain.LibraryExercise{}
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Equipment != "" {
		query["equipment"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Equipment), Options: "i"}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// DistinctEquipment returns the non-empty equipment values, sorted.
func (r *mongoExerciseLibraryRepository) DistinctEquipment(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "equipment", bson.M{"equipment": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}
	equipment := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			equipment = append(equipment, s)
		}
	}
	sort.Strings(equipment)
	return equipment, nil
}

// Upsert inserts the entry or replaces the fields of the entry with the same name.
func (r *mongoExerciseLibraryRepository) Upsert(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("library exercise name is required")
	}
	filter := bson.M{"name": exercise.Name}
	update := bson.M{
		"$set": bson.M{
			"category":    exercise.Category,
			"equipment":   exercise.Equipment,
			"muscleGroup": exercise.MuscleGroup,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.LibraryExercise
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return primitive.NilObjectID, err
	}
	exercise.ID = stored.ID
	return stored.ID, nil
}

// EnsureExerciseLibraryIndexes creates necessary indexes for the library collection.
func EnsureExerciseLibraryIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
