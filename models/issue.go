package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole     IssueCategory = "pothole"
	Garbage     IssueCategory = "garbage"
	Water       IssueCategory = "water"
	Electricity IssueCategory = "electricity"
	Other       IssueCategory = "other"
)

func (c IssueCategory) Valid() bool {
	switch c {
	case Pothole, Garbage, Water, Electricity, Other:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "in_progress"
	Resolved   IssueStatus = "resolved"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case Pending, InProgress, Resolved:
		return true
	}
	return false
}

// CanTransition reports whether an issue may move from one status to another.
// Triage is not linear: any state may move to any other, resolved issues can
// be reopened, and a same-state transition is a permitted no-op.
func CanTransition(from, to IssueStatus) bool {
	return from.Valid() && to.Valid()
}

// Issue represents a civic issue reported by a user. Latitude and longitude
// are required: an issue is never persisted without a location.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Location    string             `bson:"location" json:"location"`
	Latitude    float64            `bson:"latitude" json:"latitude"`
	Longitude   float64            `bson:"longitude" json:"longitude"`
	Status      IssueStatus        `bson:"status" json:"status"`
	ImageURL    *string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IssueFilter narrows a listing. Empty fields are inactive; active fields
// compose conjunctively.
type IssueFilter struct {
	Category string
	Status   string
	Search   string
}

// Matches reports whether an issue satisfies every active filter field. The
// search term matches case-insensitively against title or description.
func (f IssueFilter) Matches(i Issue) bool {
	if f.Category != "" && string(i.Category) != f.Category {
		return false
	}
	if f.Status != "" && string(i.Status) != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(i.Title), needle) &&
			!strings.Contains(strings.ToLower(i.Description), needle) {
			return false
		}
	}
	return true
}

// EnsureIssueIndexes creates the listing indexes for the issues collection
func EnsureIssueIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}
