package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GrantStore persists administrative grant records. The unique index on the
// user field (models.EnsureAdminGrantIndex) makes provisioning idempotent at
// the database level as well.
type GrantStore struct {
	collection *mongo.Collection
}

func NewGrantStore(collection *mongo.Collection) *GrantStore {
	return &GrantStore{collection: collection}
}

func (s *GrantStore) HasGrant(ctx context.Context, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, err
	}

	count, err := s.collection.CountDocuments(ctx, bson.M{"user": oid})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GrantStore) EnsureGrant(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	update := bson.M{"$setOnInsert": bson.M{"user": oid, "createdAt": time.Now()}}
	opts := options.Update().SetUpsert(true)

	_, err = s.collection.UpdateOne(ctx, bson.M{"user": oid}, update, opts)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}
