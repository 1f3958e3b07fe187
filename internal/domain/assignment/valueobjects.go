// Package assignment provides the domain model for identity-to-entitlement
// assignments and their lifecycle. An assignment records the grant of one
// entitlement to one user, with a validity window and full soft history.
package assignment

// Status represents the lifecycle status of an assignment
type Status string

const (
	// StatusRequested indicates the assignment awaits approval or fulfillment
	StatusRequested Status = "requested"
	// StatusActive indicates the assignment is in effect
	StatusActive Status = "active"
	// StatusRemoved is the terminal status; assignments are never deleted
	StatusRemoved Status = "removed"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusActive, StatusRemoved:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// SyncSource identifies how an assignment came into existence
type SyncSource string

const (
	// SyncSourceManual indicates a direct grant by an operator
	SyncSourceManual SyncSource = "manual"
	// SyncSourceGroup indicates the grant is derived from a group membership
	SyncSourceGroup SyncSource = "group"
	// SyncSourceLDAP indicates the grant was imported from the external directory
	SyncSourceLDAP SyncSource = "ldap"
	// SyncSourceJiraSync indicates the grant was created by ticket fulfillment
	SyncSourceJiraSync SyncSource = "jira-sync"
	// SyncSourceBlueprint indicates the grant was materialized from a role profile
	SyncSourceBlueprint SyncSource = "blueprint"
)

// IsValid checks if the sync source is valid
func (s SyncSource) IsValid() bool {
	switch s {
	case SyncSourceManual, SyncSourceGroup, SyncSourceLDAP, SyncSourceJiraSync, SyncSourceBlueprint:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sync source
func (s SyncSource) String() string {
	return string(s)
}

// IsGroupDerived reports whether the source makes the assignment
// group-managed: such assignments only change as a side effect of their
// originating group or directory link changing, never by direct revoke.
func (s SyncSource) IsGroupDerived() bool {
	return s == SyncSourceGroup || s == SyncSourceLDAP
}
