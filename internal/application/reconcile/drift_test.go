package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/shared/config"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeAssignmentRepo struct {
	assignments []*assignment.Assignment
	err         error
}

func (r *fakeAssignmentRepo) Get(context.Context, string) (*assignment.Assignment, error) {
	return nil, nil
}

func (r *fakeAssignmentRepo) FindByUser(_ context.Context, tenantID, userID string) ([]*assignment.Assignment, error) {
	if r.err != nil {
		return nil, r.err
	}
	var result []*assignment.Assignment
	for _, a := range r.assignments {
		if a.TenantID() == tenantID && a.UserID() == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) FindByTicketKey(context.Context, string) ([]*assignment.Assignment, error) {
	return nil, nil
}

func (r *fakeAssignmentRepo) FindActiveByUserAndEntitlement(context.Context, string, string, string) (*assignment.Assignment, error) {
	return nil, nil
}

func (r *fakeAssignmentRepo) Upsert(context.Context, *assignment.Assignment) error {
	return nil
}

type fakeCatalogRepo struct {
	entitlements []*catalog.Entitlement
	blueprints   []*catalog.Blueprint
}

func (r *fakeCatalogRepo) ListEntitlements(context.Context, string) ([]*catalog.Entitlement, error) {
	return r.entitlements, nil
}

func (r *fakeCatalogRepo) ListBlueprints(context.Context, string) ([]*catalog.Blueprint, error) {
	return r.blueprints, nil
}

func (r *fakeCatalogRepo) ListResources(context.Context, string) ([]*catalog.Resource, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[string]*user.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*user.User, error) {
	return r.users[userID], nil
}

func (r *fakeUserRepo) GetByEmail(context.Context, string, string) (*user.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListEnabled(_ context.Context, tenantID string) ([]*user.User, error) {
	var result []*user.User
	for _, u := range r.users {
		if u.TenantID() == tenantID && u.Enabled() {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(context.Context, *user.User) error { return nil }

type fakeDirectory struct {
	groupsByUser map[string][]string
	err          error
}

func (d *fakeDirectory) GetGroupsForUser(_ context.Context, userID string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.groupsByUser[userID], nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEntitlement(t *testing.T, id, mapping string) *catalog.Entitlement {
	t.Helper()
	var mappingPtr *string
	if mapping != "" {
		mappingPtr = &mapping
	}
	e, err := catalog.NewEntitlement(id, "res_app", "tenant-1", id, catalog.RiskLevelLow, false, mappingPtr)
	require.NoError(t, err)
	return e
}

func mustBlueprint(t *testing.T, id, jobTitle, departmentID string, entitlementIDs []string) *catalog.Blueprint {
	t.Helper()
	bp, err := catalog.NewBlueprint(id, "tenant-1", jobTitle, departmentID, entitlementIDs)
	require.NoError(t, err)
	return bp
}

func mustUser(t *testing.T, id, jobTitle, departmentID string) *user.User {
	t.Helper()
	u, err := user.NewUser(id, "tenant-1", id+"@example.com", id, jobTitle, departmentID)
	require.NoError(t, err)
	return u
}

func activeAssignment(t *testing.T, id, userID, entitlementID string) *assignment.Assignment {
	t.Helper()
	now := time.Now().UTC()
	a, err := assignment.ReconstructAssignment(
		id, userID, entitlementID, "tenant-1",
		assignment.StatusActive, "usr_admin", now, now,
		nil, nil, nil, nil, assignment.SyncSourceManual, nil, nil,
		1, now, now,
	)
	require.NoError(t, err)
	return a
}

func expiredAssignment(t *testing.T, id, userID, entitlementID string) *assignment.Assignment {
	t.Helper()
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	a, err := assignment.ReconstructAssignment(
		id, userID, entitlementID, "tenant-1",
		assignment.StatusActive, "usr_admin", past, past,
		&past, nil, nil, nil, assignment.SyncSourceManual, nil, nil,
		1, past, past,
	)
	require.NoError(t, err)
	return a
}

func newReconciler(
	assignments *fakeAssignmentRepo,
	cat *fakeCatalogRepo,
	users *fakeUserRepo,
	dir directory.Directory,
) *DriftReconciler {
	log := logger.NewLogger()
	resolver := NewBlueprintResolver(assignments, cat, log)
	return NewDriftReconciler(
		resolver, assignments, cat, users, dir,
		config.ReconcileConfig{}, 2, log,
	)
}

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

func TestResolve_UnionsAssignmentsAndBlueprint(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		activeAssignment(t, "asg_1", "usr_alice", "ent_billing"),
		expiredAssignment(t, "asg_2", "usr_alice", "ent_legacy"),
	}}
	cat := &fakeCatalogRepo{blueprints: []*catalog.Blueprint{
		mustBlueprint(t, "bpt_acct", "accountant", "", []string{"ent_reports", "ent_billing"}),
	}}

	resolver := NewBlueprintResolver(assignments, cat, logger.NewLogger())
	target, err := resolver.Resolve(context.Background(), u, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, []string{"ent_billing", "ent_reports"}, target.EntitlementIDs)
	require.NotNil(t, target.BlueprintID)
	assert.Equal(t, "bpt_acct", *target.BlueprintID)
}

func TestResolve_NoBlueprintDegradesToAssignments(t *testing.T) {
	u := mustUser(t, "usr_bob", "Astronaut", "dept_space")
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		activeAssignment(t, "asg_1", "usr_bob", "ent_billing"),
	}}

	resolver := NewBlueprintResolver(assignments, &fakeCatalogRepo{}, logger.NewLogger())
	target, err := resolver.Resolve(context.Background(), u, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, []string{"ent_billing"}, target.EntitlementIDs)
	assert.Nil(t, target.BlueprintID)
}

func TestResolve_DepartmentScopedBlueprintWins(t *testing.T) {
	u := mustUser(t, "usr_alice", "Engineer", "dept_platform")
	cat := &fakeCatalogRepo{blueprints: []*catalog.Blueprint{
		mustBlueprint(t, "bpt_generic", "Engineer", "", []string{"ent_vpn"}),
		mustBlueprint(t, "bpt_platform", "Engineer", "dept_platform", []string{"ent_prod"}),
	}}

	resolver := NewBlueprintResolver(&fakeAssignmentRepo{}, cat, logger.NewLogger())
	target, err := resolver.Resolve(context.Background(), u, time.Now().UTC())
	require.NoError(t, err)

	require.NotNil(t, target.BlueprintID)
	assert.Equal(t, "bpt_platform", *target.BlueprintID)
	assert.Equal(t, []string{"ent_prod"}, target.EntitlementIDs)
}

// ---------------------------------------------------------------------------
// Drift scoring
// ---------------------------------------------------------------------------

func TestReconcileUser_MissingGroupScoresNinety(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		activeAssignment(t, "asg_1", "usr_alice", "ent_finance"),
		activeAssignment(t, "asg_2", "usr_alice", "ent_reports"),
	}}
	cat := &fakeCatalogRepo{entitlements: []*catalog.Entitlement{
		mustEntitlement(t, "ent_finance", "grp-finance"),
		mustEntitlement(t, "ent_reports", "grp-reports"),
	}}
	dir := &fakeDirectory{groupsByUser: map[string][]string{
		"usr_alice": {"grp-finance"},
	}}

	report, err := newReconciler(assignments, cat, users, dir).
		ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"grp-reports"}, report.MissingGroups)
	assert.Empty(t, report.ExtraGroups)
	assert.Equal(t, 90, report.Score)
	assert.True(t, report.HasDrift())
}

func TestReconcileUser_ExtraManagedGroupPenalized(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		activeAssignment(t, "asg_1", "usr_alice", "ent_finance"),
	}}
	cat := &fakeCatalogRepo{entitlements: []*catalog.Entitlement{
		mustEntitlement(t, "ent_finance", "grp-finance"),
		mustEntitlement(t, "ent_legacy", "grp-legacy"),
	}}
	dir := &fakeDirectory{groupsByUser: map[string][]string{
		// grp-legacy is catalog-managed and unexpected; grp-social is not in
		// the catalog and must be ignored.
		"usr_alice": {"grp-finance", "grp-legacy", "grp-social"},
	}}

	report, err := newReconciler(assignments, cat, users, dir).
		ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)

	assert.Empty(t, report.MissingGroups)
	assert.Equal(t, []string{"grp-legacy"}, report.ExtraGroups)
	assert.Equal(t, 80, report.Score)
}

func TestReconcileUser_AlignedUserScoresHundred(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		activeAssignment(t, "asg_1", "usr_alice", "ent_finance"),
	}}
	cat := &fakeCatalogRepo{entitlements: []*catalog.Entitlement{
		mustEntitlement(t, "ent_finance", "grp-finance"),
	}}
	dir := &fakeDirectory{groupsByUser: map[string][]string{
		"usr_alice": {"grp-finance"},
	}}

	report, err := newReconciler(assignments, cat, users, dir).
		ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)

	assert.Equal(t, 100, report.Score)
	assert.False(t, report.HasDrift())
}

func TestReconcileUser_ScoreClampsAtZero(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}

	var entitlements []*catalog.Entitlement
	var assignmentList []*assignment.Assignment
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	for _, suffix := range ids {
		entitlements = append(entitlements, mustEntitlement(t, "ent_"+suffix, "grp-"+suffix))
		assignmentList = append(assignmentList, activeAssignment(t, "asg_"+suffix, "usr_alice", "ent_"+suffix))
	}

	dir := &fakeDirectory{groupsByUser: map[string][]string{"usr_alice": nil}}
	report, err := newReconciler(
		&fakeAssignmentRepo{assignments: assignmentList},
		&fakeCatalogRepo{entitlements: entitlements},
		users, dir,
	).ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)

	assert.Len(t, report.MissingGroups, 11)
	assert.Equal(t, 0, report.Score)
}

func TestReconcileUser_UnmappedEntitlementsIgnored(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		activeAssignment(t, "asg_1", "usr_alice", "ent_internal"),
	}}
	cat := &fakeCatalogRepo{entitlements: []*catalog.Entitlement{
		mustEntitlement(t, "ent_internal", ""),
	}}
	dir := &fakeDirectory{groupsByUser: map[string][]string{"usr_alice": nil}}

	report, err := newReconciler(assignments, cat, users, dir).
		ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)

	assert.Empty(t, report.TargetGroups)
	assert.Equal(t, 100, report.Score)
}

func TestReconcileUser_SurfacesExpiredAssignments(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}
	assignments := &fakeAssignmentRepo{assignments: []*assignment.Assignment{
		expiredAssignment(t, "asg_old", "usr_alice", "ent_finance"),
	}}
	cat := &fakeCatalogRepo{entitlements: []*catalog.Entitlement{
		mustEntitlement(t, "ent_finance", "grp-finance"),
	}}
	dir := &fakeDirectory{groupsByUser: map[string][]string{"usr_alice": nil}}

	report, err := newReconciler(assignments, cat, users, dir).
		ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)

	// The expired assignment no longer contributes to the target.
	assert.Empty(t, report.TargetGroups)
	assert.Equal(t, []string{"asg_old"}, report.ExpiredAssignmentIDs)
}

func TestReconcileUser_DirectoryFailurePropagates(t *testing.T) {
	u := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{"usr_alice": u}}
	dir := &fakeDirectory{err: directory.ErrDirectoryUnavailable}

	_, err := newReconciler(&fakeAssignmentRepo{}, &fakeCatalogRepo{}, users, dir).
		ReconcileUser(context.Background(), "tenant-1", "usr_alice")
	assert.ErrorIs(t, err, directory.ErrDirectoryUnavailable)
}

func TestReconcileUser_NotFound(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*user.User{}}
	_, err := newReconciler(&fakeAssignmentRepo{}, &fakeCatalogRepo{}, users, &fakeDirectory{}).
		ReconcileUser(context.Background(), "tenant-1", "usr_ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// ---------------------------------------------------------------------------
// Tenant-wide recompute
// ---------------------------------------------------------------------------

func TestReconcileTenant_OneUserFailingDoesNotAbortRun(t *testing.T) {
	alice := mustUser(t, "usr_alice", "Accountant", "dept_fin")
	bob := mustUser(t, "usr_bob", "Accountant", "dept_fin")
	users := &fakeUserRepo{users: map[string]*user.User{
		"usr_alice": alice,
		"usr_bob":   bob,
	}}
	cat := &fakeCatalogRepo{entitlements: []*catalog.Entitlement{
		mustEntitlement(t, "ent_finance", "grp-finance"),
	}}
	dir := &perUserDirectory{
		groups: map[string][]string{"usr_alice": {"grp-finance"}},
		errs:   map[string]error{"usr_bob": errors.New("ldap timeout")},
	}

	summary, err := newReconciler(&fakeAssignmentRepo{}, cat, users, dir).
		ReconcileTenant(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Reports, 1)
	assert.Equal(t, "usr_alice", summary.Reports[0].UserID)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures["usr_bob"], "ldap timeout")
}

type perUserDirectory struct {
	groups map[string][]string
	errs   map[string]error
}

func (d *perUserDirectory) GetGroupsForUser(_ context.Context, userID string) ([]string, error) {
	if err, ok := d.errs[userID]; ok {
		return nil, err
	}
	return d.groups[userID], nil
}

// ---------------------------------------------------------------------------
// Weights
// ---------------------------------------------------------------------------

func TestScore_ConfiguredWeights(t *testing.T) {
	log := logger.NewLogger()
	resolver := NewBlueprintResolver(&fakeAssignmentRepo{}, &fakeCatalogRepo{}, log)
	d := NewDriftReconciler(
		resolver, &fakeAssignmentRepo{}, &fakeCatalogRepo{}, &fakeUserRepo{}, &fakeDirectory{},
		config.ReconcileConfig{MissingWeight: 5, ExtraWeight: 50}, 0, log,
	)

	assert.Equal(t, 95, d.score(1, 0))
	assert.Equal(t, 50, d.score(0, 1))
	assert.Equal(t, 0, d.score(0, 3))
}
