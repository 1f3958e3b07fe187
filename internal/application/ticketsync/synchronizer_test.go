package ticketsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custos-grc/custos/internal/application/lifecycle"
	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/audit"
	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/domain/ticketing"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeGateway struct {
	mu         sync.Mutex
	tickets    map[ticketing.Queue][]ticketing.Ticket
	errs       map[ticketing.Queue]error
	resolved   []string
	resolveErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tickets: make(map[ticketing.Queue][]ticketing.Ticket),
		errs:    make(map[ticketing.Queue]error),
	}
}

func (g *fakeGateway) ListTickets(_ context.Context, queue ticketing.Queue) ([]ticketing.Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs[queue]; err != nil {
		return nil, err
	}
	return g.tickets[queue], nil
}

func (g *fakeGateway) ResolveTicket(_ context.Context, key, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolveErr != nil {
		return g.resolveErr
	}
	g.resolved = append(g.resolved, key)
	return nil
}

func (g *fakeGateway) resolvedKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.resolved...)
}

type memoryAssignmentRepo struct {
	mu      sync.Mutex
	records map[string]*assignment.Assignment
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{records: make(map[string]*assignment.Assignment)}
}

func cloneAssignment(a *assignment.Assignment) *assignment.Assignment {
	copied, err := assignment.ReconstructAssignment(
		a.ID(), a.UserID(), a.EntitlementID(), a.TenantID(),
		a.Status(), a.GrantedBy(), a.GrantedAt(), a.ValidFrom(),
		a.ValidUntil(), a.LastReviewedAt(), a.ReviewedBy(),
		a.OriginGroupID(), a.SyncSource(), a.TicketRef(), a.JiraIssueKey(),
		a.Version(), a.CreatedAt(), a.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return copied
}

func (r *memoryAssignmentRepo) Get(_ context.Context, assignmentID string) (*assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[assignmentID]
	if !ok {
		return nil, nil
	}
	return cloneAssignment(a), nil
}

func (r *memoryAssignmentRepo) FindByUser(_ context.Context, tenantID, userID string) ([]*assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*assignment.Assignment
	for _, a := range r.records {
		if a.TenantID() == tenantID && a.UserID() == userID {
			result = append(result, cloneAssignment(a))
		}
	}
	return result, nil
}

func (r *memoryAssignmentRepo) FindByTicketKey(_ context.Context, issueKey string) ([]*assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*assignment.Assignment
	for _, a := range r.records {
		if a.JiraIssueKey() != nil && *a.JiraIssueKey() == issueKey {
			result = append(result, cloneAssignment(a))
		}
	}
	return result, nil
}

func (r *memoryAssignmentRepo) FindActiveByUserAndEntitlement(_ context.Context, tenantID, userID, entitlementID string) (*assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.TenantID() == tenantID && a.UserID() == userID &&
			a.EntitlementID() == entitlementID && a.Status() == assignment.StatusActive {
			return cloneAssignment(a), nil
		}
	}
	return nil, nil
}

func (r *memoryAssignmentRepo) Upsert(_ context.Context, a *assignment.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[a.ID()] = cloneAssignment(a)
	return nil
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemoryUserRepo(users ...*user.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[string]*user.User)}
	for _, u := range users {
		repo.users[u.ID()] = u
	}
	return repo
}

func (r *memoryUserRepo) GetByID(_ context.Context, userID string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID], nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, tenantID, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TenantID() == tenantID && u.Email() == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) ListEnabled(_ context.Context, tenantID string) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*user.User
	for _, u := range r.users {
		if u.TenantID() == tenantID && u.Enabled() {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *memoryUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

type staticCatalogRepo struct {
	entitlements []*catalog.Entitlement
	err          error
}

func (r *staticCatalogRepo) ListEntitlements(context.Context, string) ([]*catalog.Entitlement, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.entitlements, nil
}

func (r *staticCatalogRepo) ListBlueprints(context.Context, string) ([]*catalog.Blueprint, error) {
	return nil, nil
}

func (r *staticCatalogRepo) ListResources(context.Context, string) ([]*catalog.Resource, error) {
	return nil, nil
}

type fakeDirectory struct {
	mu          sync.Mutex
	invalidated []string
}

func (d *fakeDirectory) GetGroupsForUser(context.Context, string) ([]string, error) {
	return nil, nil
}

func (d *fakeDirectory) InvalidateUser(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidated = append(d.invalidated, userID)
	return nil
}

func (d *fakeDirectory) invalidatedUsers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.invalidated...)
}

type capturingEmitter struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (e *capturingEmitter) Emit(entry audit.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
}

func (e *capturingEmitter) actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	actions := make([]string, len(e.entries))
	for i, entry := range e.entries {
		actions[i] = entry.Action
	}
	return actions
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	sync    *Synchronizer
	gateway *fakeGateway
	repo    *memoryAssignmentRepo
	users   *memoryUserRepo
	catalog *staticCatalogRepo
	dir     *fakeDirectory
	emitter *capturingEmitter
}

func newFixture(t *testing.T, users ...*user.User) *fixture {
	t.Helper()

	name := "Reporting Viewer"
	reporting, err := catalog.NewEntitlement("ent_reporting", "res_bi", "tenant-1", name, catalog.RiskLevelLow, false, nil)
	require.NoError(t, err)
	billing, err := catalog.NewEntitlement("ent_billing", "res_erp", "tenant-1", "Billing Admin", catalog.RiskLevelHigh, true, nil)
	require.NoError(t, err)

	gateway := newFakeGateway()
	repo := newMemoryAssignmentRepo()
	userRepo := newMemoryUserRepo(users...)
	catalogRepo := &staticCatalogRepo{entitlements: []*catalog.Entitlement{reporting, billing}}
	dir := &fakeDirectory{}
	emitter := &capturingEmitter{}
	log := logger.NewLogger()
	lifecycleSvc := lifecycle.NewService(repo, emitter, log)

	return &fixture{
		sync: NewSynchronizer(
			gateway,
			ticketing.NewSubstringMatcher(),
			lifecycleSvc,
			repo,
			userRepo,
			catalogRepo,
			dir,
			emitter,
			log,
		),
		gateway: gateway,
		repo:    repo,
		users:   userRepo,
		catalog: catalogRepo,
		dir:     dir,
		emitter: emitter,
	}
}

func mustUser(t *testing.T, id, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(id, "tenant-1", email, id, "Accountant", "dept_fin")
	require.NoError(t, err)
	return u
}

func approvedTicket(key, summary, email string) ticketing.Ticket {
	return ticketing.Ticket{
		Key:                key,
		Summary:            summary,
		Status:             "Approved",
		RequestedUserEmail: email,
		Created:            time.Now().UTC(),
	}
}

func resultFor(t *testing.T, report *SyncReport, key string) TicketResult {
	t.Helper()
	for _, r := range report.Results {
		if r.Key == key {
			return r
		}
	}
	t.Fatalf("no result for ticket %s", key)
	return TicketResult{}
}

// ---------------------------------------------------------------------------
// Approved queue
// ---------------------------------------------------------------------------

func TestSync_ApprovedTicketGrantsAndResolves(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))
	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-101", "Access request: Reporting Viewer", "alice@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "ACC-101")
	assert.Equal(t, OutcomeApplied, result.Outcome)
	require.Len(t, result.AssignmentIDs, 1)

	granted, err := f.repo.Get(context.Background(), result.AssignmentIDs[0])
	require.NoError(t, err)
	require.NotNil(t, granted)
	assert.Equal(t, assignment.StatusActive, granted.Status())
	assert.Equal(t, assignment.SyncSourceJiraSync, granted.SyncSource())
	require.NotNil(t, granted.JiraIssueKey())
	assert.Equal(t, "ACC-101", *granted.JiraIssueKey())

	assert.Equal(t, []string{"ACC-101"}, f.gateway.resolvedKeys())
}

func TestSync_SecondPassIsNoopWithoutSecondResolve(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))
	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-101", "Access request: Reporting Viewer", "alice@example.com"),
	}

	_, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	// The tracker still lists the ticket as approved, e.g. after a resolve
	// call that was applied remotely but reported a transport error.
	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "ACC-101")
	assert.Equal(t, OutcomeNoop, result.Outcome)
	assert.Equal(t, []string{"ACC-101"}, f.gateway.resolvedKeys(), "resolve must be called at most once")

	active, err := f.repo.FindByUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)
	assert.Len(t, active, 1, "no duplicate grant on re-sync")
}

func TestSync_ApprovedTicketLinksToExistingGrant(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))

	existing, err := assignment.NewAssignment("usr_alice", "ent_reporting", "tenant-1", "usr_admin", nil, assignment.Origin{})
	require.NoError(t, err)
	require.NoError(t, f.repo.Upsert(context.Background(), existing))

	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-102", "Access request: Reporting Viewer", "alice@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "ACC-102")
	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Contains(t, result.Detail, "linked to existing grant")
	assert.Equal(t, []string{existing.ID()}, result.AssignmentIDs)

	linked, err := f.repo.Get(context.Background(), existing.ID())
	require.NoError(t, err)
	require.NotNil(t, linked.JiraIssueKey())
	assert.Equal(t, "ACC-102", *linked.JiraIssueKey())
	assert.Equal(t, []string{"ACC-102"}, f.gateway.resolvedKeys())
}

func TestSync_AmbiguousSummaryIsSkipped(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))
	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-103", "Need Reporting Viewer and Billing Admin please", "alice@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "ACC-103")
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.Detail, ticketing.ErrAmbiguousTicketMatch.Error())
	assert.Empty(t, f.gateway.resolvedKeys(), "skipped tickets are never resolved")

	assignments, err := f.repo.FindByUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestSync_UnknownUserIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-104", "Access request: Reporting Viewer", "ghost@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "ACC-104")
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.Detail, "ghost@example.com")
}

func TestSync_ResolveFailureKeepsGrantAndNotesDetail(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))
	f.gateway.resolveErr = errors.New("jira 502")
	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-105", "Access request: Reporting Viewer", "alice@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "ACC-105")
	assert.Equal(t, OutcomeApplied, result.Outcome, "grant stands even when resolve fails")
	assert.Contains(t, result.Detail, "resolve call failed")

	assignments, err := f.repo.FindByUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

// ---------------------------------------------------------------------------
// Done queue
// ---------------------------------------------------------------------------

func TestSync_DoneTicketActivatesRequestedAssignment(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_bob", "bob@example.com"))

	now := time.Now().UTC()
	key := "ACC-200"
	requested, err := assignment.ReconstructAssignment(
		"asg_req", "usr_bob", "ent_reporting", "tenant-1",
		assignment.StatusRequested, "usr_bob", now, now,
		nil, nil, nil, nil, assignment.SyncSourceJiraSync, &key, &key,
		1, now, now,
	)
	require.NoError(t, err)
	require.NoError(t, f.repo.Upsert(context.Background(), requested))

	f.gateway.tickets[ticketing.QueueDone] = []ticketing.Ticket{
		{Key: key, Summary: "Access request: Reporting Viewer", Status: "Done", RequestedUserEmail: "bob@example.com"},
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, key)
	assert.Equal(t, OutcomeApplied, result.Outcome)

	stored, err := f.repo.Get(context.Background(), "asg_req")
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusActive, stored.Status())

	// Re-running the same done ticket is a no-op.
	report, err = f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, resultFor(t, report, key).Outcome)
}

func TestSync_OffboardingTicketRemovesAllAccessAndDisablesUser(t *testing.T) {
	u := mustUser(t, "usr_carol", "carol@example.com")
	f := newFixture(t, u)

	now := time.Now().UTC()
	groupID := "grp_finance"
	direct, err := assignment.NewAssignment("usr_carol", "ent_reporting", "tenant-1", "usr_admin", nil, assignment.Origin{})
	require.NoError(t, err)
	derived, err := assignment.ReconstructAssignment(
		"asg_derived", "usr_carol", "ent_billing", "tenant-1",
		assignment.StatusActive, "usr_admin", now, now,
		nil, nil, nil, &groupID, assignment.SyncSourceGroup, nil, nil,
		1, now, now,
	)
	require.NoError(t, err)
	require.NoError(t, f.repo.Upsert(context.Background(), direct))
	require.NoError(t, f.repo.Upsert(context.Background(), derived))

	f.gateway.tickets[ticketing.QueueDone] = []ticketing.Ticket{
		{Key: "HR-300", Summary: "Offboarding: Carol", Status: "Done", RequestedUserEmail: "carol@example.com"},
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	result := resultFor(t, report, "HR-300")
	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Len(t, result.AssignmentIDs, 2)

	// Group-managed assignments fall with the user; the direct-revoke guard
	// does not apply to offboarding finalization.
	for _, id := range result.AssignmentIDs {
		stored, err := f.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, assignment.StatusRemoved, stored.Status())
	}

	stored, err := f.users.GetByID(context.Background(), "usr_carol")
	require.NoError(t, err)
	assert.False(t, stored.Enabled())
	assert.NotNil(t, stored.OffboardingDate())
	assert.Contains(t, f.emitter.actions(), "user offboarded")
	assert.Equal(t, []string{"usr_carol"}, f.dir.invalidatedUsers(),
		"offboarding drops the cached directory snapshot")

	// Second pass over the same ticket changes nothing.
	report, err = f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, resultFor(t, report, "HR-300").Outcome)
}

// ---------------------------------------------------------------------------
// Queue failures
// ---------------------------------------------------------------------------

func TestSync_FailingQueueDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))
	f.gateway.errs[ticketing.QueuePending] = ticketing.ErrGatewayUnavailable
	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-106", "Access request: Reporting Viewer", "alice@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Contains(t, report.SourceErrors, ticketing.QueuePending)
	assert.Equal(t, OutcomeApplied, resultFor(t, report, "ACC-106").Outcome)
}

func TestSync_CatalogOutageStillFinalizesDoneQueue(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_bob", "bob@example.com"))
	f.catalog.err = errors.New("catalog store down")

	now := time.Now().UTC()
	key := "ACC-201"
	requested, err := assignment.ReconstructAssignment(
		"asg_req", "usr_bob", "ent_reporting", "tenant-1",
		assignment.StatusRequested, "usr_bob", now, now,
		nil, nil, nil, nil, assignment.SyncSourceJiraSync, &key, &key,
		1, now, now,
	)
	require.NoError(t, err)
	require.NoError(t, f.repo.Upsert(context.Background(), requested))

	f.gateway.tickets[ticketing.QueueApproved] = []ticketing.Ticket{
		approvedTicket("ACC-108", "Access request: Reporting Viewer", "bob@example.com"),
	}
	f.gateway.tickets[ticketing.QueueDone] = []ticketing.Ticket{
		{Key: key, Summary: "Access request: Reporting Viewer", Status: "Done", RequestedUserEmail: "bob@example.com"},
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Contains(t, report.CatalogError, "catalog store down")

	approved := resultFor(t, report, "ACC-108")
	assert.Equal(t, OutcomeSkipped, approved.Outcome)
	assert.Contains(t, approved.Detail, "entitlement catalog unavailable")
	assert.Empty(t, f.gateway.resolvedKeys(), "no grant, no resolve")

	done := resultFor(t, report, key)
	assert.Equal(t, OutcomeApplied, done.Outcome)
	stored, err := f.repo.Get(context.Background(), "asg_req")
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusActive, stored.Status())
}

func TestSync_PendingTicketsAreCountedOnly(t *testing.T) {
	f := newFixture(t, mustUser(t, "usr_alice", "alice@example.com"))
	f.gateway.tickets[ticketing.QueuePending] = []ticketing.Ticket{
		approvedTicket("ACC-107", "Access request: Reporting Viewer", "alice@example.com"),
	}

	report, err := f.sync.Sync(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 1, report.PendingCount)
	assert.Empty(t, report.Results)
	assert.Empty(t, f.gateway.resolvedKeys())

	assignments, err := f.repo.FindByUser(context.Background(), "tenant-1", "usr_alice")
	require.NoError(t, err)
	assert.Empty(t, assignments, "pending tickets must never mutate state")
}
