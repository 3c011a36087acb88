// Package comments manages issue comment threads and resolves author display
// identity, tolerating partial identity-lookup failure.
package comments

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"citizenreport/apperrors"
	"citizenreport/models"
	"citizenreport/services/authz"
)

// Store is the persistence contract for comment records.
type Store interface {
	InsertComment(ctx context.Context, comment *models.Comment) error
	// FindCommentsByIssue returns comments ascending by creation time.
	FindCommentsByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error)
}

// IdentityLookup resolves author IDs to email addresses in one batch.
type IdentityLookup interface {
	EmailsByID(ctx context.Context, ids []string) (map[string]string, error)
}

// ThreadEntry is a comment decorated with its author display label. Degraded
// marks an anonymized label produced after the identity lookup failed.
type ThreadEntry struct {
	models.Comment
	AuthorLabel string `json:"authorLabel"`
	Degraded    bool   `json:"degraded,omitempty"`
}

type Manager struct {
	Store      Store
	Identities IdentityLookup
	Gate       *authz.Gate
}

func NewManager(store Store, identities IdentityLookup, gate *authz.Gate) *Manager {
	return &Manager{Store: store, Identities: identities, Gate: gate}
}

// List returns the thread for an issue, oldest first, with author labels.
// When the batched identity lookup fails, each comment gets a truncated
// anonymized label instead; the viewer's own comments keep the viewer's
// email. Identity degradation never fails the listing.
func (m *Manager) List(ctx context.Context, issueID string, viewer *authz.Principal) ([]ThreadEntry, error) {
	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, apperrors.Validation("issueId", "invalid issue ID")
	}

	comments, err := m.Store.FindCommentsByIssue(ctx, oid)
	if err != nil {
		return nil, err
	}

	emails := m.resolveAuthors(ctx, comments)

	entries := make([]ThreadEntry, 0, len(comments))
	for _, c := range comments {
		authorID := c.Author.Hex()
		entry := ThreadEntry{Comment: c}
		switch {
		case emails != nil && emails[authorID] != "":
			entry.AuthorLabel = emails[authorID]
		case viewer != nil && viewer.ID == authorID && viewer.Email != "":
			entry.AuthorLabel = viewer.Email
			entry.Degraded = true
		default:
			entry.AuthorLabel = anonymizedLabel(authorID)
			entry.Degraded = true
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Add appends a comment to an issue thread.
func (m *Manager) Add(ctx context.Context, issueID, content string, p *authz.Principal) (*models.Comment, error) {
	role := m.Gate.Classify(ctx, p)
	if !authz.CanComment(role) {
		return nil, apperrors.Authorization("you must be signed in to comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("content", "comment cannot be empty")
	}

	oid, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, apperrors.Validation("issueId", "invalid issue ID")
	}
	author, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, apperrors.Validation("author", "invalid user ID")
	}

	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		IssueID:   oid,
		Content:   content,
		Author:    author,
		CreatedAt: time.Now(),
	}
	if err := m.Store.InsertComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (m *Manager) resolveAuthors(ctx context.Context, comments []models.Comment) map[string]string {
	if m.Identities == nil || len(comments) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var ids []string
	for _, c := range comments {
		id := c.Author.Hex()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	emails, err := m.Identities.EmailsByID(ctx, ids)
	if err != nil {
		log.Printf("comments: identity lookup failed, degrading labels: %v", err)
		return nil
	}
	return emails
}

// anonymizedLabel never exposes a full raw identifier.
func anonymizedLabel(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("User %s...", id)
}
