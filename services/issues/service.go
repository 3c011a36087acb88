// Package issues owns issue creation, listing, and the status state machine.
package issues

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"citizenreport/apperrors"
	"citizenreport/models"
	"citizenreport/services/authz"
)

// Store is the persistence contract for issue records.
type Store interface {
	InsertIssue(ctx context.Context, issue *models.Issue) error
	FindIssues(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
	FindIssueByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	SetIssueStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error)
	FindRecentWithCoordinates(ctx context.Context, limit int64) ([]models.Issue, error)
	CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error)
}

// Draft carries the fields a citizen supplies when reporting an issue.
// Coordinates are pointers so a missing location is distinguishable from a
// zero one; both must be present before the issue can be persisted.
type Draft struct {
	Title       string
	Description string
	Category    string
	Location    string
	Latitude    *float64
	Longitude   *float64
	ImageURL    *string
}

type Service struct {
	Store Store
	Gate  *authz.Gate
}

func NewService(store Store, gate *authz.Gate) *Service {
	return &Service{Store: store, Gate: gate}
}

// Create validates a draft and persists it with status pending. Validation
// reports the first unmet requirement.
func (s *Service) Create(ctx context.Context, draft Draft, p *authz.Principal) (*models.Issue, error) {
	role := s.Gate.Classify(ctx, p)
	if !authz.CanCreateIssue(role) {
		return nil, apperrors.Authorization("you must be signed in to report an issue")
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, apperrors.Validation("title", "title is required")
	}
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		return nil, apperrors.Validation("description", "description is required")
	}
	category := models.IssueCategory(draft.Category)
	if !category.Valid() {
		return nil, apperrors.Validation("category", "select a valid category")
	}
	if draft.Latitude == nil || draft.Longitude == nil {
		return nil, apperrors.Validation("location", "select a location on the map")
	}

	author, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, apperrors.Validation("author", "invalid user ID")
	}

	location := draft.Location
	if location == "" {
		// Display address is a convenience; the coordinates are the record.
		location = formatCoordinates(*draft.Latitude, *draft.Longitude)
	}

	now := time.Now()
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Category:    category,
		Location:    location,
		Latitude:    *draft.Latitude,
		Longitude:   *draft.Longitude,
		Status:      models.Pending,
		ImageURL:    draft.ImageURL,
		CreatedBy:   author,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.InsertIssue(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// List returns issues newest first, narrowed by the filter.
func (s *Service) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	return s.Store.FindIssues(ctx, filter)
}

// Get returns a single issue by its hex ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("id", "invalid issue ID")
	}
	return s.Store.FindIssueByID(ctx, oid)
}

// UpdateStatus moves an issue to a new status. Only an admin may transition;
// any state may move to any other, and a same-state transition is an
// idempotent no-op.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string, p *authz.Principal) (*models.Issue, error) {
	role := s.Gate.Classify(ctx, p)
	if !authz.CanTransitionStatus(role) {
		return nil, apperrors.Authorization("only an administrator can change issue status")
	}

	next := models.IssueStatus(status)
	if !next.Valid() {
		return nil, apperrors.Validation("status", "status must be pending, in_progress or resolved")
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("id", "invalid issue ID")
	}

	current, err := s.Store.FindIssueByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(current.Status, next) {
		return nil, apperrors.Validation("status", "illegal status transition")
	}

	return s.Store.SetIssueStatus(ctx, oid, next)
}

// RecentPins returns the newest issues for map rendering.
func (s *Service) RecentPins(ctx context.Context, limit int64) ([]models.Issue, error) {
	return s.Store.FindRecentWithCoordinates(ctx, limit)
}

// DashboardSummary returns per-status counts for the admin triage view.
func (s *Service) DashboardSummary(ctx context.Context, p *authz.Principal) (map[models.IssueStatus]int64, error) {
	role := s.Gate.Classify(ctx, p)
	if !authz.CanViewAdminDashboard(role) {
		return nil, apperrors.Authorization("admin access required")
	}
	return s.Store.CountByStatus(ctx)
}

func formatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}
