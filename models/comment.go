package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Comment is an immutable note on an issue. It cannot exist without an
// authenticated author and is never edited or deleted after creation.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID `bson:"issue" json:"issueId"`
	Content   string             `bson:"content" json:"content"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureCommentIndexes creates the thread-listing index for (issue, createdAt)
func EnsureCommentIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issue", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}
