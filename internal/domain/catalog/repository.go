package catalog

import "context"

// Repository is the read-only catalog port. All calls are tenant-scoped by
// explicit parameter; there is no ambient tenant filter.
type Repository interface {
	// ListEntitlements retrieves the full entitlement catalog for a tenant
	ListEntitlements(ctx context.Context, tenantID string) ([]*Entitlement, error)

	// ListBlueprints retrieves all job-title blueprints for a tenant
	ListBlueprints(ctx context.Context, tenantID string) ([]*Blueprint, error)

	// ListResources retrieves all resources for a tenant
	ListResources(ctx context.Context, tenantID string) ([]*Resource, error)
}
