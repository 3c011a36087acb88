// Package authz classifies principals into roles and exposes the capability
// checks consumed by every other service.
package authz

import (
	"context"
	"log"
)

// Role is derived on every classification, never stored on the user record.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCitizen   Role = "citizen"
	RoleAdmin     Role = "admin"
)

// Principal identifies an authenticated actor. A nil Principal is an
// unauthenticated request.
type Principal struct {
	ID    string
	Email string
}

// GrantStore reads and provisions administrative grant records.
type GrantStore interface {
	HasGrant(ctx context.Context, userID string) (bool, error)
	// EnsureGrant provisions a grant if none exists. Must be idempotent.
	EnsureGrant(ctx context.Context, userID string) error
}

// Gate derives roles from the configured administrative identity and the
// grant collection.
type Gate struct {
	Store      GrantStore
	AdminEmail string
}

func NewGate(store GrantStore, adminEmail string) *Gate {
	return &Gate{Store: store, AdminEmail: adminEmail}
}

// Classify returns the role of a principal. A principal whose email matches
// the designated administrative address is admin and gets a grant record
// provisioned on first sight, so elevation self-heals without manual seeding.
// A transient grant-lookup failure degrades to anonymous rather than failing,
// keeping read-only browsing available.
func (g *Gate) Classify(ctx context.Context, p *Principal) Role {
	if p == nil || p.ID == "" {
		return RoleAnonymous
	}

	if g.AdminEmail != "" && p.Email == g.AdminEmail {
		if err := g.Store.EnsureGrant(ctx, p.ID); err != nil {
			log.Printf("authz: grant provisioning for %s failed: %v", p.ID, err)
		}
		return RoleAdmin
	}

	granted, err := g.Store.HasGrant(ctx, p.ID)
	if err != nil {
		log.Printf("authz: grant lookup for %s failed: %v", p.ID, err)
		return RoleAnonymous
	}
	if granted {
		return RoleAdmin
	}
	return RoleCitizen
}

func CanCreateIssue(r Role) bool {
	return r == RoleCitizen || r == RoleAdmin
}

func CanComment(r Role) bool {
	return r == RoleCitizen || r == RoleAdmin
}

func CanTransitionStatus(r Role) bool {
	return r == RoleAdmin
}

func CanViewAdminDashboard(r Role) bool {
	return r == RoleAdmin
}
