// Package storage implements the service-layer store contracts on MongoDB.
package storage

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"citizenreport/models"
)

type IssueStore struct {
	collection *mongo.Collection
}

func NewIssueStore(collection *mongo.Collection) *IssueStore {
	return &IssueStore{collection: collection}
}

func (s *IssueStore) InsertIssue(ctx context.Context, issue *models.Issue) error {
	_, err := s.collection.InsertOne(ctx, issue)
	return err
}

// issueQuery translates a filter into a mongo query. The search term is a
// literal substring match, so regex metacharacters are escaped before it is
// handed to $regex.
func issueQuery(filter models.IssueFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		term := regexp.QuoteMeta(filter.Search)
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": term, "$options": "i"}},
			{"description": bson.M{"$regex": term, "$options": "i"}},
		}
	}
	return query
}

func (s *IssueStore) FindIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	query := issueQuery(filter)

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *IssueStore) FindIssueByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *IssueStore) SetIssueStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *IssueStore) FindRecentWithCoordinates(ctx context.Context, limit int64) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *IssueStore) CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error) {
	counts := make(map[models.IssueStatus]int64)
	for _, status := range []models.IssueStatus{models.Pending, models.InProgress, models.Resolved} {
		count, err := s.collection.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}
