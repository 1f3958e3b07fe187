package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/shared/config"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils/setutil"
)

const (
	defaultMissingWeight = 10
	defaultExtraWeight   = 20

	defaultRecomputeConcurrency = 4
)

// DriftReconciler compares the resolved target state against the external
// directory and scores the deviation.
type DriftReconciler struct {
	resolver       *BlueprintResolver
	assignmentRepo assignment.Repository
	catalogRepo    catalog.Repository
	userRepo       user.Repository
	directory      directory.Directory
	missingWeight  int
	extraWeight    int
	concurrency    int
	logger         logger.Interface
}

// NewDriftReconciler creates a reconciler. Zero or negative weights fall back
// to the defaults.
func NewDriftReconciler(
	resolver *BlueprintResolver,
	assignmentRepo assignment.Repository,
	catalogRepo catalog.Repository,
	userRepo user.Repository,
	dir directory.Directory,
	cfg config.ReconcileConfig,
	concurrency int,
	log logger.Interface,
) *DriftReconciler {
	missingWeight := cfg.MissingWeight
	if missingWeight <= 0 {
		missingWeight = defaultMissingWeight
	}
	extraWeight := cfg.ExtraWeight
	if extraWeight <= 0 {
		extraWeight = defaultExtraWeight
	}
	if concurrency <= 0 {
		concurrency = defaultRecomputeConcurrency
	}

	return &DriftReconciler{
		resolver:       resolver,
		assignmentRepo: assignmentRepo,
		catalogRepo:    catalogRepo,
		userRepo:       userRepo,
		directory:      dir,
		missingWeight:  missingWeight,
		extraWeight:    extraWeight,
		concurrency:    concurrency,
		logger:         log,
	}
}

// ReconcileUser computes the drift report for one user.
func (d *DriftReconciler) ReconcileUser(ctx context.Context, tenantID, userID string) (*DriftReport, error) {
	u, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.TenantID() != tenantID {
		return nil, user.ErrUserNotFound
	}
	return d.reconcile(ctx, u)
}

// ReconcileTenant recomputes drift for every enabled user in the tenant.
// Users are processed concurrently; a failure for one user is recorded in the
// summary and never aborts the run.
func (d *DriftReconciler) ReconcileTenant(ctx context.Context, tenantID string) (*TenantDriftSummary, error) {
	users, err := d.userRepo.ListEnabled(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	summary := &TenantDriftSummary{
		TenantID:  tenantID,
		StartedAt: time.Now().UTC(),
		Failures:  make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, u := range users {
		g.Go(func() error {
			report, err := d.reconcile(gctx, u)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.logger.Warnw("drift recompute failed for user",
					"tenant_id", tenantID,
					"user_id", u.ID(),
					"error", err,
				)
				summary.Failures[u.ID()] = err.Error()
				return nil
			}
			summary.Reports = append(summary.Reports, report)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(summary.Failures) == 0 {
		summary.Failures = nil
	}
	summary.FinishedAt = time.Now().UTC()

	d.logger.Infow("tenant drift recompute finished",
		"tenant_id", tenantID,
		"users", len(users),
		"reports", len(summary.Reports),
		"failures", len(summary.Failures),
	)
	return summary, nil
}

func (d *DriftReconciler) reconcile(ctx context.Context, u *user.User) (*DriftReport, error) {
	now := time.Now().UTC()

	target, err := d.resolver.Resolve(ctx, u, now)
	if err != nil {
		return nil, err
	}

	entitlements, err := d.catalogRepo.ListEntitlements(ctx, u.TenantID())
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement catalog: %w", err)
	}

	// Managed groups are every external mapping the catalog knows about.
	// Only those can ever count as drift; groups outside the catalog's remit
	// are invisible to the engine.
	mappingByEntitlement := make(map[string]string, len(entitlements))
	managedGroups := setutil.NewStringSet()
	for _, e := range entitlements {
		if !e.IsExternallyManaged() {
			continue
		}
		mappingByEntitlement[e.ID()] = *e.ExternalMapping()
		managedGroups.Add(*e.ExternalMapping())
	}

	targetGroups := setutil.NewStringSet()
	for _, entID := range target.EntitlementIDs {
		if group, ok := mappingByEntitlement[entID]; ok {
			targetGroups.Add(group)
		}
	}

	actualGroups, err := d.directory.GetGroupsForUser(ctx, u.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to read directory groups for user %s: %w", u.ID(), err)
	}
	actual := setutil.NewStringSetFrom(actualGroups)

	missing := targetGroups.Difference(actual)
	extra := actual.Intersection(managedGroups).Difference(targetGroups)

	report := &DriftReport{
		TenantID:             u.TenantID(),
		UserID:               u.ID(),
		ComputedAt:           now,
		TargetGroups:         targetGroups.ToSortedSlice(),
		ActualGroups:         actual.ToSortedSlice(),
		MissingGroups:        missing.ToSortedSlice(),
		ExtraGroups:          extra.ToSortedSlice(),
		Score:                d.score(missing.Len(), extra.Len()),
		ExpiredAssignmentIDs: d.expiredAssignmentIDs(ctx, u),
	}

	if report.HasDrift() {
		d.logger.Infow("drift detected",
			"user_id", u.ID(),
			"score", report.Score,
			"missing", report.MissingGroups,
			"extra", report.ExtraGroups,
		)
	}
	return report, nil
}

// score clamps into [0, 100]. A perfectly aligned user scores 100.
func (d *DriftReconciler) score(missing, extra int) int {
	score := 100 - d.missingWeight*missing - d.extraWeight*extra
	if score < 0 {
		return 0
	}
	return score
}

func (d *DriftReconciler) expiredAssignmentIDs(ctx context.Context, u *user.User) []string {
	assignments, err := d.assignmentRepo.FindByUser(ctx, u.TenantID(), u.ID())
	if err != nil {
		// Expiry is advisory; a load failure degrades the report rather than
		// failing the drift computation.
		d.logger.Warnw("failed to load assignments for expiry check",
			"user_id", u.ID(),
			"error", err,
		)
		return nil
	}

	now := time.Now().UTC()
	ids := setutil.NewStringSet()
	for _, a := range assignments {
		if a.IsExpired(now) {
			ids.Add(a.ID())
		}
	}
	if ids.Len() == 0 {
		return nil
	}
	return ids.ToSortedSlice()
}
