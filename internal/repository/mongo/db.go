package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weeklygrind/plan-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. The unique indexes
// carry storage invariants, so a failure here should stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		collection string
		ensure     func(context.Context, *mongo.Collection) error
	}{
		{userCollectionName, EnsureUserIndexes},
		{planCollectionName, EnsurePlanIndexes},
		{planDayCollectionName, EnsurePlanDayIndexes},
		{dayExerciseCollectionName, EnsureDayExerciseIndexes},
		{exerciseLibraryCollectionName, EnsureExerciseLibraryIndexes},
		{userPlanCollectionName, EnsureUserPlanIndexes},
		{completionCollectionName, EnsureCompletionIndexes},
		{shareTokenCollectionName, EnsureShareTokenIndexes},
		{planExportCollectionName, EnsurePlanExportIndexes},
	}
	for _, s := range steps {
		if err := s.ensure(ctx, db.Collection(s.collection)); err != nil {
			return fmt.Errorf("indexes for %s: %w", s.collection, err)
		}
	}
	return nil
}

func insertedObjectID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// NewRepositories wires every MongoDB repository against db.
func NewRepositories(client *mongo.Client, db *mongo.Database, transactions bool) *repository.Repositories {
	return &repository.Repositories{
		Users:        NewMongoUserRepository(db),
		Plans:        NewMongoPlanRepository(db),
		PlanDays:     NewMongoPlanDayRepository(db),
		DayExercises: NewMongoDayExerciseRepository(db),
		Library:      NewMongoExerciseLibraryRepository(db),
		UserPlans:    NewMongoUserPlanRepository(db),
		Completions:  NewMongoCompletionRepository(db),
		ShareTokens:  NewMongoShareTokenRepository(db),
		Exports:      NewMongoPlanExportRepository(db),
		Transactor:   NewMongoTransactor(client, transactions),
	}
}
