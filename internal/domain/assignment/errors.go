package assignment

import (
	"errors"
	"fmt"
)

var (
	// ErrAssignmentNotFound is returned when an assignment is not found
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrDuplicateActiveGrant is returned when an active assignment already
	// exists for the same user and entitlement
	ErrDuplicateActiveGrant = errors.New("active assignment already exists for this user and entitlement")

	// ErrGroupManagedAssignment is returned on a direct revoke of an
	// assignment that is derived from a group or directory link
	ErrGroupManagedAssignment = errors.New("assignment is group-managed and cannot be revoked directly")

	// ErrUserIDRequired is returned when the user ID is missing
	ErrUserIDRequired = errors.New("user ID is required")

	// ErrEntitlementIDRequired is returned when the entitlement ID is missing
	ErrEntitlementIDRequired = errors.New("entitlement ID is required")

	// ErrTenantIDRequired is returned when the tenant ID is missing
	ErrTenantIDRequired = errors.New("tenant ID is required")
)

// ErrInvalidStatusTransition returns an error for illegal lifecycle transitions
func ErrInvalidStatusTransition(from, to Status) error {
	return fmt.Errorf("invalid status transition from %s to %s", from, to)
}
