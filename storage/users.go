package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"citizenreport/models"
)

// UserStore is the identity lookup used for comment author labels.
type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(collection *mongo.Collection) *UserStore {
	return &UserStore{collection: collection}
}

// EmailsByID resolves user IDs to emails in one batch. Unknown IDs are
// simply absent from the result.
func (s *UserStore) EmailsByID(ctx context.Context, ids []string) (map[string]string, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return map[string]string{}, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID.Hex()] = u.Email
	}
	return emails, nil
}
