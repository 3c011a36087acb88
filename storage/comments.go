package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"citizenreport/models"
)

type CommentStore struct {
	collection *mongo.Collection
}

func NewCommentStore(collection *mongo.Collection) *CommentStore {
	return &CommentStore{collection: collection}
}

func (s *CommentStore) InsertComment(ctx context.Context, comment *models.Comment) error {
	_, err := s.collection.InsertOne(ctx, comment)
	return err
}

func (s *CommentStore) FindCommentsByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{"issue": issueID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
