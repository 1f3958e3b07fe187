package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newDirectGrant creates an active manual assignment with sensible defaults.
func newDirectGrant(t *testing.T) *Assignment {
	t.Helper()
	a, err := NewAssignment("usr_alice", "ent_reporting", "tenant-1", "usr_admin", nil, Origin{})
	require.NoError(t, err)
	return a
}

// reconstructedAssignment builds a persisted-style assignment.
func reconstructedAssignment(t *testing.T, status Status, source SyncSource, originGroupID *string) *Assignment {
	t.Helper()
	return reconstructedWithValidUntil(t, status, source, originGroupID, nil)
}

func reconstructedWithValidUntil(t *testing.T, status Status, source SyncSource, originGroupID *string, validUntil *time.Time) *Assignment {
	t.Helper()
	now := time.Now().UTC()
	a, err := ReconstructAssignment(
		"asg_00000000001",
		"usr_alice", "ent_reporting", "tenant-1",
		status,
		"usr_admin", now, now,
		validUntil,
		nil, // lastReviewedAt
		nil, // reviewedBy
		originGroupID,
		source,
		nil, // ticketRef
		nil, // jiraIssueKey
		1,
		now, now,
	)
	require.NoError(t, err)
	return a
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Constructor
// ---------------------------------------------------------------------------

func TestNewAssignment_DirectGrantIsActive(t *testing.T) {
	a := newDirectGrant(t)

	assert.Equal(t, StatusActive, a.Status())
	assert.Equal(t, SyncSourceManual, a.SyncSource())
	assert.True(t, len(a.ID()) > 4)
	assert.Nil(t, a.ValidUntil())
	assert.Equal(t, 1, a.Version())
}

func TestNewAssignment_Validation(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		entitlementID string
		tenantID      string
		grantedBy     string
		wantErr       error
	}{
		{"missing user", "", "ent_1", "t1", "usr_admin", ErrUserIDRequired},
		{"missing entitlement", "usr_1", "", "t1", "usr_admin", ErrEntitlementIDRequired},
		{"missing tenant", "usr_1", "ent_1", "", "usr_admin", ErrTenantIDRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAssignment(tc.userID, tc.entitlementID, tc.tenantID, tc.grantedBy, nil, Origin{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Lifecycle transitions
// ---------------------------------------------------------------------------

func TestCertify_UpdatesReviewStampWithoutStatusChange(t *testing.T) {
	a := newDirectGrant(t)
	now := time.Now().UTC()

	require.NoError(t, a.Certify("usr_reviewer", now))

	assert.Equal(t, StatusActive, a.Status())
	require.NotNil(t, a.LastReviewedAt())
	assert.Equal(t, now, *a.LastReviewedAt())
	require.NotNil(t, a.ReviewedBy())
	assert.Equal(t, "usr_reviewer", *a.ReviewedBy())
}

func TestCertify_ActivatesRequestedAssignment(t *testing.T) {
	a := reconstructedAssignment(t, StatusRequested, SyncSourceJiraSync, nil)

	require.NoError(t, a.Certify("usr_reviewer", time.Now().UTC()))
	assert.Equal(t, StatusActive, a.Status())
}

func TestCertify_RemovedAssignmentFails(t *testing.T) {
	a := reconstructedAssignment(t, StatusRemoved, SyncSourceManual, nil)

	err := a.Certify("usr_reviewer", time.Now().UTC())
	assert.Error(t, err)
}

func TestRevoke_DirectGrant(t *testing.T) {
	a := newDirectGrant(t)
	effective := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, a.Revoke("usr_reviewer", effective))

	assert.Equal(t, StatusRemoved, a.Status())
	require.NotNil(t, a.ValidUntil())
	assert.Equal(t, effective, *a.ValidUntil())
	assert.NotNil(t, a.LastReviewedAt())
}

func TestRevoke_GroupManagedFails(t *testing.T) {
	tests := []struct {
		name          string
		source        SyncSource
		originGroupID *string
	}{
		{"group source", SyncSourceGroup, nil},
		{"ldap source", SyncSourceLDAP, nil},
		{"origin group set on manual grant", SyncSourceManual, strPtr("grp_finance")},
		{"blueprint materialized with origin group", SyncSourceBlueprint, strPtr("bpt_analyst")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := reconstructedAssignment(t, StatusActive, tc.source, tc.originGroupID)

			err := a.Revoke("usr_reviewer", time.Now().UTC())
			assert.ErrorIs(t, err, ErrGroupManagedAssignment)
			assert.Equal(t, StatusActive, a.Status(), "status must not change on rejected revoke")
		})
	}
}

func TestRevoke_AlreadyRemovedFails(t *testing.T) {
	a := reconstructedAssignment(t, StatusRemoved, SyncSourceManual, nil)
	assert.Error(t, a.Revoke("usr_reviewer", time.Now().UTC()))
}

func TestActivate_OnlyFromRequested(t *testing.T) {
	a := reconstructedAssignment(t, StatusRequested, SyncSourceJiraSync, nil)
	require.NoError(t, a.Activate(time.Now().UTC()))
	assert.Equal(t, StatusActive, a.Status())

	// Second activation is an invalid transition.
	assert.Error(t, a.Activate(time.Now().UTC()))
}

func TestRemove_BypassesGroupManagedGuard(t *testing.T) {
	a := reconstructedAssignment(t, StatusActive, SyncSourceGroup, strPtr("grp_finance"))
	effective := time.Now().UTC()

	require.NoError(t, a.Remove(effective))
	assert.Equal(t, StatusRemoved, a.Status())
	require.NotNil(t, a.ValidUntil())
	assert.Equal(t, effective, *a.ValidUntil())
}

// ---------------------------------------------------------------------------
// Expiry
// ---------------------------------------------------------------------------

func TestIsExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		status     Status
		validUntil *time.Time
		want       bool
	}{
		{"active with past validUntil", StatusActive, &past, true},
		{"active with future validUntil", StatusActive, &future, false},
		{"active unbounded", StatusActive, nil, false},
		{"removed with past validUntil", StatusRemoved, &past, false},
		{"requested with past validUntil", StatusRequested, &past, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := reconstructedWithValidUntil(t, tc.status, SyncSourceManual, nil, tc.validUntil)
			assert.Equal(t, tc.want, a.IsExpired(now))
		})
	}
}

// ---------------------------------------------------------------------------
// Ticket linking
// ---------------------------------------------------------------------------

func TestLinkTicket(t *testing.T) {
	a := newDirectGrant(t)

	a.LinkTicket("JSM-100")

	require.NotNil(t, a.JiraIssueKey())
	assert.Equal(t, "JSM-100", *a.JiraIssueKey())
	require.NotNil(t, a.TicketRef())
	assert.Equal(t, "JSM-100", *a.TicketRef())
}

func TestLinkTicket_EmptyKeyIgnored(t *testing.T) {
	a := newDirectGrant(t)
	version := a.Version()

	a.LinkTicket("")

	assert.Nil(t, a.JiraIssueKey())
	assert.Equal(t, version, a.Version())
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

func TestToSnapshot(t *testing.T) {
	a := newDirectGrant(t)
	a.LinkTicket("JSM-7")

	snap := a.ToSnapshot()

	assert.Equal(t, a.ID(), snap.ID)
	assert.Equal(t, "active", snap.Status)
	assert.Equal(t, "manual", snap.SyncSource)
	require.NotNil(t, snap.JiraIssueKey)
	assert.Equal(t, "JSM-7", *snap.JiraIssueKey)
}
