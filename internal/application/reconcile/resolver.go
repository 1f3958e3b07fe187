// Package reconcile computes the desired access state for users and scores how
// far the external directory has drifted from it.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils/setutil"
)

// BlueprintResolver resolves the target entitlement set for a user.
type BlueprintResolver struct {
	assignmentRepo assignment.Repository
	catalogRepo    catalog.Repository
	logger         logger.Interface
}

// NewBlueprintResolver creates a resolver.
func NewBlueprintResolver(
	assignmentRepo assignment.Repository,
	catalogRepo catalog.Repository,
	log logger.Interface,
) *BlueprintResolver {
	return &BlueprintResolver{
		assignmentRepo: assignmentRepo,
		catalogRepo:    catalogRepo,
		logger:         log,
	}
}

// Resolve computes the target state for a user as of the given instant: every
// active, non-expired assignment plus the blueprint baseline for the user's
// job title. A user without a matching blueprint is not an error; the target
// is then their assignments alone.
func (r *BlueprintResolver) Resolve(ctx context.Context, u *user.User, asOf time.Time) (*TargetState, error) {
	target := setutil.NewStringSet()

	assignments, err := r.assignmentRepo.FindByUser(ctx, u.TenantID(), u.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	for _, a := range assignments {
		if a.Status() != assignment.StatusActive || a.IsExpired(asOf) {
			continue
		}
		target.Add(a.EntitlementID())
	}

	blueprints, err := r.catalogRepo.ListBlueprints(ctx, u.TenantID())
	if err != nil {
		return nil, fmt.Errorf("failed to load blueprints: %w", err)
	}

	state := &TargetState{
		UserID:   u.ID(),
		TenantID: u.TenantID(),
	}

	if bp := matchBlueprint(blueprints, u); bp != nil {
		target.AddAll(bp.EntitlementIDs())
		blueprintID := bp.ID()
		state.BlueprintID = &blueprintID
	} else if u.JobTitle() != "" {
		r.logger.Debugw("no blueprint for job title, using assignments only",
			"user_id", u.ID(),
			"job_title", u.JobTitle(),
		)
	}

	state.EntitlementIDs = target.ToSortedSlice()
	return state, nil
}

// matchBlueprint picks the blueprint for the user's job title. A blueprint
// scoped to the user's department wins over a tenant-wide one with the same
// title. Title comparison is case-insensitive.
func matchBlueprint(blueprints []*catalog.Blueprint, u *user.User) *catalog.Blueprint {
	var fallback *catalog.Blueprint
	for _, bp := range blueprints {
		if !strings.EqualFold(bp.JobTitle(), u.JobTitle()) {
			continue
		}
		switch bp.DepartmentID() {
		case u.DepartmentID():
			return bp
		case "":
			if fallback == nil {
				fallback = bp
			}
		}
	}
	return fallback
}
