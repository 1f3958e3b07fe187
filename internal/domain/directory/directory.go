// Package directory defines the port to the authoritative external directory.
// The engine only reads group memberships from it; drift is reported, never
// auto-remediated, so no provisioning calls exist on this port.
package directory

import "context"

// Directory exposes the authoritative group memberships for a user.
type Directory interface {
	// GetGroupsForUser retrieves the set of external group identifiers the
	// user actually belongs to.
	GetGroupsForUser(ctx context.Context, userID string) ([]string, error)
}

// SnapshotInvalidator is implemented by directory decorators that hold
// per-user snapshots. Flows that change what a user should hold drop the
// snapshot so the next read goes upstream.
type SnapshotInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}
