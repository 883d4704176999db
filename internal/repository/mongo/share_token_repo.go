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

const shareTokenCollectionName = "share_tokens"

// mongoShareTokenRepository implements repository.ShareTokenRepository
type mongoShareTokenRepository struct {
	collection *mongo.Collection
}

// NewMongoShareTokenRepository creates a new ShareToken repository.
func NewMongoShareTokenRepository(db *mongo.Database) repository.ShareTokenRepository {
	return &mongoShareTokenRepository{
		collection: db.Collection(shareTokenCollectionName),
	}
}

func (r *mongoShareTokenRepository) Create(ctx context.Context, token *domain.ShareToken) error {
	if token.Token == "" || token.PlanID == primitive.NilObjectID {
		return errors.New("share token requires token and planId")
	}
	token.ID = primitive.NewObjectID()
	token.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoShareTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ShareToken, error) {
	var shareToken domain.ShareToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&shareToken)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &shareToken, nil
}

// Claim is a single conditional update: of two concurrent claims only one
// matches a document with usedAt still absent.
func (r *mongoShareTokenRepository) Claim(ctx context.Context, token string, userID primitive.ObjectID, now time.Time) (*domain.ShareToken, error) {
	now = now.UTC()
	filter := bson.M{
		"token":     token,
		"usedAt":    bson.M{"$exists": false},
		"expiresAt": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"usedAt": now, "usedBy": userID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var shareToken domain.ShareToken
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&shareToken)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &shareToken, nil
}

func (r *mongoShareTokenRepository) Release(ctx context.Context, token string, userID primitive.ObjectID) error {
	filter := bson.M{"token": token, "usedBy": userID}
	update := bson.M{"$unset": bson.M{"usedAt": "", "usedBy": ""}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureShareTokenIndexes creates necessary indexes for the share_tokens collection.
func EnsureShareTokenIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
