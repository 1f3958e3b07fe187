package assignment

import (
	"fmt"
	"time"

	"github.com/custos-grc/custos/internal/shared/id"
)

// Assignment is the aggregate root for a grant of one entitlement to one user.
// Assignments are never physically deleted; the terminal state is removed with
// validUntil set to the removal date, so the full grant history is retained.
type Assignment struct {
	id             string
	userID         string
	entitlementID  string
	tenantID       string
	status         Status
	grantedBy      string
	grantedAt      time.Time
	validFrom      time.Time
	validUntil     *time.Time // nil means unbounded
	lastReviewedAt *time.Time
	reviewedBy     *string
	originGroupID  *string // set when the grant derives from a group or blueprint
	syncSource     SyncSource
	ticketRef      *string
	jiraIssueKey   *string
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// Origin describes where a new grant came from.
type Origin struct {
	SyncSource    SyncSource
	OriginGroupID *string
	TicketRef     *string
	JiraIssueKey  *string
}

// NewAssignment creates a direct grant in active state. Direct grants skip the
// requested status; ticket-driven requests enter via ReconstructAssignment or
// the synchronizer.
func NewAssignment(
	userID string,
	entitlementID string,
	tenantID string,
	grantedBy string,
	validUntil *time.Time,
	origin Origin,
) (*Assignment, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if entitlementID == "" {
		return nil, ErrEntitlementIDRequired
	}
	if tenantID == "" {
		return nil, ErrTenantIDRequired
	}
	if grantedBy == "" {
		return nil, fmt.Errorf("granted by is required")
	}
	source := origin.SyncSource
	if source == "" {
		source = SyncSourceManual
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid sync source: %s", source)
	}

	now := time.Now().UTC()
	return &Assignment{
		id:            id.MustGenerateWithPrefix(id.PrefixAssignment, id.DefaultLength),
		userID:        userID,
		entitlementID: entitlementID,
		tenantID:      tenantID,
		status:        StatusActive,
		grantedBy:     grantedBy,
		grantedAt:     now,
		validFrom:     now,
		validUntil:    validUntil,
		originGroupID: origin.OriginGroupID,
		syncSource:    source,
		ticketRef:     origin.TicketRef,
		jiraIssueKey:  origin.JiraIssueKey,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructAssignment reconstructs an assignment from persistence.
func ReconstructAssignment(
	assignmentID string,
	userID string,
	entitlementID string,
	tenantID string,
	status Status,
	grantedBy string,
	grantedAt time.Time,
	validFrom time.Time,
	validUntil *time.Time,
	lastReviewedAt *time.Time,
	reviewedBy *string,
	originGroupID *string,
	syncSource SyncSource,
	ticketRef *string,
	jiraIssueKey *string,
	version int,
	createdAt, updatedAt time.Time,
) (*Assignment, error) {
	if assignmentID == "" {
		return nil, fmt.Errorf("assignment ID cannot be empty")
	}
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if entitlementID == "" {
		return nil, ErrEntitlementIDRequired
	}
	if tenantID == "" {
		return nil, ErrTenantIDRequired
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid assignment status: %s", status)
	}
	if !syncSource.IsValid() {
		return nil, fmt.Errorf("invalid sync source: %s", syncSource)
	}

	return &Assignment{
		id:             assignmentID,
		userID:         userID,
		entitlementID:  entitlementID,
		tenantID:       tenantID,
		status:         status,
		grantedBy:      grantedBy,
		grantedAt:      grantedAt,
		validFrom:      validFrom,
		validUntil:     validUntil,
		lastReviewedAt: lastReviewedAt,
		reviewedBy:     reviewedBy,
		originGroupID:  originGroupID,
		syncSource:     syncSource,
		ticketRef:      ticketRef,
		jiraIssueKey:   jiraIssueKey,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

// ID returns the assignment ID
func (a *Assignment) ID() string { return a.id }

// UserID returns the user ID
func (a *Assignment) UserID() string { return a.userID }

// EntitlementID returns the entitlement ID
func (a *Assignment) EntitlementID() string { return a.entitlementID }

// TenantID returns the tenant ID
func (a *Assignment) TenantID() string { return a.tenantID }

// Status returns the lifecycle status
func (a *Assignment) Status() Status { return a.status }

// GrantedBy returns who granted the assignment
func (a *Assignment) GrantedBy() string { return a.grantedBy }

// GrantedAt returns when the assignment was granted
func (a *Assignment) GrantedAt() time.Time { return a.grantedAt }

// ValidFrom returns the start of the validity window
func (a *Assignment) ValidFrom() time.Time { return a.validFrom }

// ValidUntil returns the end of the validity window, nil if unbounded
func (a *Assignment) ValidUntil() *time.Time { return a.validUntil }

// LastReviewedAt returns the last certification time
func (a *Assignment) LastReviewedAt() *time.Time { return a.lastReviewedAt }

// ReviewedBy returns the last certifying reviewer
func (a *Assignment) ReviewedBy() *string { return a.reviewedBy }

// OriginGroupID returns the originating group, nil for direct grants
func (a *Assignment) OriginGroupID() *string { return a.originGroupID }

// SyncSource returns the origin of the assignment
func (a *Assignment) SyncSource() SyncSource { return a.syncSource }

// TicketRef returns the external ticket reference, if any
func (a *Assignment) TicketRef() *string { return a.ticketRef }

// JiraIssueKey returns the linked ticket key, if any
func (a *Assignment) JiraIssueKey() *string { return a.jiraIssueKey }

// Version returns the aggregate version for optimistic locking
func (a *Assignment) Version() int { return a.version }

// CreatedAt returns when the record was created
func (a *Assignment) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns when the record was last updated
func (a *Assignment) UpdatedAt() time.Time { return a.updatedAt }

// IsGroupManaged reports whether this assignment is derived from a group or
// directory link. Group-managed assignments may only change status as a side
// effect of their originating link changing.
func (a *Assignment) IsGroupManaged() bool {
	return a.originGroupID != nil || a.syncSource.IsGroupDerived()
}

// IsExpired reports whether the assignment is active but past its validity
// window as of the given time. Expiry is a reportable condition, not an
// automatic transition.
func (a *Assignment) IsExpired(asOf time.Time) bool {
	return a.status == StatusActive && a.validUntil != nil && a.validUntil.Before(asOf)
}

// Certify re-confirms an active assignment, updating the review stamp without
// changing status. Certifying a requested assignment activates it.
func (a *Assignment) Certify(reviewerID string, now time.Time) error {
	if reviewerID == "" {
		return fmt.Errorf("reviewer ID is required")
	}
	if a.status == StatusRemoved {
		return ErrInvalidStatusTransition(a.status, StatusActive)
	}

	a.status = StatusActive
	a.lastReviewedAt = &now
	a.reviewedBy = &reviewerID
	a.touch(now)
	return nil
}

// Revoke removes an assignment by direct reviewer action. It fails with
// ErrGroupManagedAssignment for derived grants; those follow their group.
func (a *Assignment) Revoke(reviewerID string, effective time.Time) error {
	if reviewerID == "" {
		return fmt.Errorf("reviewer ID is required")
	}
	if a.IsGroupManaged() {
		return ErrGroupManagedAssignment
	}
	if a.status == StatusRemoved {
		return ErrInvalidStatusTransition(a.status, StatusRemoved)
	}

	now := time.Now().UTC()
	a.status = StatusRemoved
	a.validUntil = &effective
	a.lastReviewedAt = &now
	a.reviewedBy = &reviewerID
	a.touch(now)
	return nil
}

// Activate transitions a requested assignment to active. Used by ticket
// finalization when a fulfilled request is confirmed.
func (a *Assignment) Activate(now time.Time) error {
	if a.status != StatusRequested {
		return ErrInvalidStatusTransition(a.status, StatusActive)
	}
	a.status = StatusActive
	a.touch(now)
	return nil
}

// Remove transitions the assignment to removed without the group-managed
// guard. This is the side-effect path: group/blueprint link removal and
// offboarding finalization go through here, never direct operator revokes.
func (a *Assignment) Remove(effective time.Time) error {
	if a.status == StatusRemoved {
		return ErrInvalidStatusTransition(a.status, StatusRemoved)
	}
	a.status = StatusRemoved
	a.validUntil = &effective
	a.touch(effective)
	return nil
}

// LinkTicket tags the assignment with the external ticket key that created or
// fulfilled it. The link makes subsequent synchronizer polls idempotent.
func (a *Assignment) LinkTicket(issueKey string) {
	if issueKey == "" {
		return
	}
	a.jiraIssueKey = &issueKey
	if a.ticketRef == nil {
		a.ticketRef = &issueKey
	}
	a.touch(time.Now().UTC())
}

func (a *Assignment) touch(now time.Time) {
	a.updatedAt = now
	a.version++
}

// Snapshot is an immutable copy of assignment state used as the audit payload.
type Snapshot struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	EntitlementID  string     `json:"entitlement_id"`
	TenantID       string     `json:"tenant_id"`
	Status         string     `json:"status"`
	GrantedBy      string     `json:"granted_by"`
	GrantedAt      time.Time  `json:"granted_at"`
	ValidFrom      time.Time  `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	ReviewedBy     *string    `json:"reviewed_by,omitempty"`
	OriginGroupID  *string    `json:"origin_group_id,omitempty"`
	SyncSource     string     `json:"sync_source"`
	TicketRef      *string    `json:"ticket_ref,omitempty"`
	JiraIssueKey   *string    `json:"jira_issue_key,omitempty"`
	Version        int        `json:"version"`
}

// ToSnapshot copies the current state into a Snapshot.
func (a *Assignment) ToSnapshot() Snapshot {
	return Snapshot{
		ID:             a.id,
		UserID:         a.userID,
		EntitlementID:  a.entitlementID,
		TenantID:       a.tenantID,
		Status:         a.status.String(),
		GrantedBy:      a.grantedBy,
		GrantedAt:      a.grantedAt,
		ValidFrom:      a.validFrom,
		ValidUntil:     a.validUntil,
		LastReviewedAt: a.lastReviewedAt,
		ReviewedBy:     a.reviewedBy,
		OriginGroupID:  a.originGroupID,
		SyncSource:     a.syncSource.String(),
		TicketRef:      a.ticketRef,
		JiraIssueKey:   a.jiraIssueKey,
		Version:        a.version,
	}
}
