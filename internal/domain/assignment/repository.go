package assignment

import "context"

// Repository defines the persistence port for assignments. All ids are opaque
// strings; the engine requires nothing of the store beyond these lookups and
// last-writer-wins upserts.
type Repository interface {
	// Get retrieves an assignment by ID
	Get(ctx context.Context, assignmentID string) (*Assignment, error)

	// FindByUser retrieves all assignments for a user within a tenant,
	// including removed ones (full history)
	FindByUser(ctx context.Context, tenantID, userID string) ([]*Assignment, error)

	// FindByTicketKey retrieves all assignments linked to an external ticket key
	FindByTicketKey(ctx context.Context, issueKey string) ([]*Assignment, error)

	// FindActiveByUserAndEntitlement retrieves the active assignment for a
	// (user, entitlement) pair, or nil if none exists
	FindActiveByUserAndEntitlement(ctx context.Context, tenantID, userID, entitlementID string) (*Assignment, error)

	// Upsert creates or updates an assignment record
	Upsert(ctx context.Context, a *Assignment) error
}
