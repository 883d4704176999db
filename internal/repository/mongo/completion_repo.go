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

const completionCollectionName = "completions"

// completionDocument adds the open marker the partial unique index is built
// on. It is set while the completion is in progress and removed on finalize.
type completionDocument struct {
	domain.Completion `bson:",inline"`
	Open              bool `bson:"open,omitempty"`
}

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new Completion repository.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

func openCompletionFilter(userPlanID primitive.ObjectID, dayNumber int) bson.M {
	return bson.M{"userPlanId": userPlanID, "dayNumber": dayNumber, "open": true}
}

// AddExercise upserts the open completion with $addToSet. When two requests
// race to create it, the unique index rejects one insert and that request
// retries once, landing on the winner's document.
func (r *mongoCompletionRepository) AddExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) (*domain.Completion, error) {
	completion, err := r.addExercise(ctx, userPlanID, dayNumber, dayExerciseID)
	if mongo.IsDuplicateKeyError(err) {
		completion, err = r.addExercise(ctx, userPlanID, dayNumber, dayExerciseID)
	}
	return completion, err
}

func (r *mongoCompletionRepository) addExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) (*domain.Completion, error) {
	update := bson.M{
		"$addToSet":    bson.M{"exerciseIds": dayExerciseID},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc completionDocument
	err := r.collection.FindOneAndUpdate(ctx, openCompletionFilter(userPlanID, dayNumber), update, opts).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc.Completion, nil
}

func (r *mongoCompletionRepository) RemoveExercise(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, dayExerciseID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"exerciseIds": dayExerciseID}}
	_, err := r.collection.UpdateOne(ctx, openCompletionFilter(userPlanID, dayNumber), update)
	return err
}

func (r *mongoCompletionRepository) Finalize(ctx context.Context, userPlanID primitive.ObjectID, dayNumber int, at time.Time) (*domain.Completion, error) {
	at = at.UTC()
	update := bson.M{
		"$set":   bson.M{"completedAt": at},
		"$unset": bson.M{"open": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc completionDocument
	err := r.collection.FindOneAndUpdate(ctx, openCompletionFilter(userPlanID, dayNumber), update, opts).Decode(&doc)
	if err == nil {
		return &doc.Completion, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Nothing was checked off: record the day as done with an empty checklist.
	completion := domain.Completion{
		ID:          primitive.NewObjectID(),
		UserPlanID:  userPlanID,
		DayNumber:   dayNumber,
		CompletedAt: &at,
		ExerciseIDs: []primitive.ObjectID{},
		CreatedAt:   at,
	}
	if _, err := r.collection.InsertOne(ctx, completionDocument{Completion: completion}); err != nil {
		return nil, err
	}
	return &completion, nil
}

func (r *mongoCompletionRepository) GetByUserPlanID(ctx context.Context, userPlanID primitive.ObjectID) ([]domain.Completion, error) {
	// open sorts before missing, then newest completion first
	findOptions := options.Find().SetSort(bson.D{
		{Key: "open", Value: -1},
		{Key: "completedAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"userPlanId": userPlanID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []completionDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	completions := make([]domain.Completion, 0, len(docs))
	for _, d := range docs {
		if d.ExerciseIDs == nil {
			d.ExerciseIDs = []primitive.ObjectID{}
		}
		completions = append(completions, d.Completion)
	}
	return completions, nil
}

// EnsureCompletionIndexes creates the partial unique index that allows at
// most one open completion per (userPlanId, dayNumber).
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userPlanId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().
				SetName("one_open_completion_per_day").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"open": true}),
		},
		{
			Keys:    bson.D{{Key: "userPlanId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
