// Package lifecycle implements the assignment lifecycle state machine. All
// assignment mutations flow through this service regardless of origin, so the
// transition rules and the one-audit-entry-per-mutation guarantee hold in one
// place.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/audit"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/synckey"
)

// GrantRequest describes a new grant.
type GrantRequest struct {
	TenantID      string
	ActorID       string
	UserID        string
	EntitlementID string
	ValidUntil    *time.Time
	Origin        assignment.Origin
}

// Service enforces legal assignment transitions. Mutations for the same user
// are serialized through a keyed mutex; operations for different users run
// independently.
type Service struct {
	assignmentRepo assignment.Repository
	auditor        audit.Emitter
	userLocks      *synckey.KeyedMutex
	logger         logger.Interface
}

// NewService creates a lifecycle service.
func NewService(
	assignmentRepo assignment.Repository,
	auditor audit.Emitter,
	log logger.Interface,
) *Service {
	return &Service{
		assignmentRepo: assignmentRepo,
		auditor:        auditor,
		userLocks:      synckey.NewKeyedMutex(),
		logger:         log,
	}
}

// Grant creates an active assignment. It fails with ErrDuplicateActiveGrant
// when an active assignment for the same (user, entitlement) already exists.
func (s *Service) Grant(ctx context.Context, req GrantRequest) (*assignment.Assignment, error) {
	s.userLocks.Lock(req.UserID)
	defer s.userLocks.Unlock(req.UserID)

	existing, err := s.assignmentRepo.FindActiveByUserAndEntitlement(ctx, req.TenantID, req.UserID, req.EntitlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing grant: %w", err)
	}
	if existing != nil {
		s.logger.Warnw("duplicate active grant rejected",
			"user_id", req.UserID,
			"entitlement_id", req.EntitlementID,
			"existing_assignment_id", existing.ID(),
		)
		return nil, assignment.ErrDuplicateActiveGrant
	}

	a, err := assignment.NewAssignment(
		req.UserID, req.EntitlementID, req.TenantID, req.ActorID, req.ValidUntil, req.Origin,
	)
	if err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to persist grant: %w", err)
	}

	s.emit(req.TenantID, req.ActorID, "assignment granted", a.ID(), nil, a.ToSnapshot())

	s.logger.Infow("assignment granted",
		"assignment_id", a.ID(),
		"user_id", req.UserID,
		"entitlement_id", req.EntitlementID,
		"sync_source", a.SyncSource(),
	)
	return a, nil
}

// Certify re-confirms an assignment, stamping the reviewer and review time.
func (s *Service) Certify(ctx context.Context, actorID, assignmentID string) (*assignment.Assignment, error) {
	return s.mutate(ctx, actorID, assignmentID, "assignment certified",
		func(a *assignment.Assignment) error {
			return a.Certify(actorID, time.Now().UTC())
		})
}

// Revoke removes an assignment by direct reviewer action. Group-managed
// assignments are rejected with ErrGroupManagedAssignment; they may only
// change as a side effect of their originating link changing.
func (s *Service) Revoke(ctx context.Context, actorID, assignmentID string, effective time.Time) (*assignment.Assignment, error) {
	return s.mutate(ctx, actorID, assignmentID, "assignment revoked",
		func(a *assignment.Assignment) error {
			return a.Revoke(actorID, effective)
		})
}

// AttachTicket links an external ticket key to an existing assignment and
// re-certifies it. Used when an approved ticket maps onto a grant that
// already exists.
func (s *Service) AttachTicket(ctx context.Context, actorID, assignmentID, issueKey string) (*assignment.Assignment, error) {
	return s.mutate(ctx, actorID, assignmentID, "assignment linked to ticket",
		func(a *assignment.Assignment) error {
			a.LinkTicket(issueKey)
			return a.Certify(actorID, time.Now().UTC())
		})
}

// Finalize drives an assignment to the target status during ticket
// finalization. It returns changed=false without touching anything when the
// assignment is already in the target status, so re-processing a done ticket
// is a no-op with no duplicate audit entries.
func (s *Service) Finalize(
	ctx context.Context,
	actorID, assignmentID string,
	target assignment.Status,
	effective time.Time,
) (changed bool, err error) {
	// Fresh read before the user lock to learn the user key.
	a, err := s.assignmentRepo.Get(ctx, assignmentID)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, assignment.ErrAssignmentNotFound
	}

	s.userLocks.Lock(a.UserID())
	defer s.userLocks.Unlock(a.UserID())

	// Re-read under the lock; the idempotency check must see current state.
	a, err = s.assignmentRepo.Get(ctx, assignmentID)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, assignment.ErrAssignmentNotFound
	}

	if a.Status() == target {
		return false, nil
	}

	before := a.ToSnapshot()
	var action string
	switch target {
	case assignment.StatusActive:
		action = "assignment activated by ticket fulfillment"
		err = a.Activate(effective)
	case assignment.StatusRemoved:
		action = "assignment removed by ticket fulfillment"
		err = a.Remove(effective)
	default:
		return false, assignment.ErrInvalidStatusTransition(a.Status(), target)
	}
	if err != nil {
		return false, err
	}

	if err := s.assignmentRepo.Upsert(ctx, a); err != nil {
		return false, fmt.Errorf("failed to persist finalization: %w", err)
	}

	s.emit(a.TenantID(), actorID, action, a.ID(), before, a.ToSnapshot())
	return true, nil
}

// ListForUser returns the full assignment history for a user, including
// removed records.
func (s *Service) ListForUser(ctx context.Context, tenantID, userID string) ([]*assignment.Assignment, error) {
	all, err := s.assignmentRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return all, nil
}

// ListExpired returns active assignments whose validity window has passed.
// Expiry is surfaced for reporting and escalation, never auto-revoked.
func (s *Service) ListExpired(ctx context.Context, tenantID, userID string, asOf time.Time) ([]*assignment.Assignment, error) {
	all, err := s.assignmentRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	var expired []*assignment.Assignment
	for _, a := range all {
		if a.IsExpired(asOf) {
			expired = append(expired, a)
		}
	}
	return expired, nil
}

// mutate runs the common read-lock-reread-apply-persist-audit sequence for
// single-assignment operations. The precondition checks inside fn always see
// a freshly-read record.
func (s *Service) mutate(
	ctx context.Context,
	actorID, assignmentID, action string,
	fn func(*assignment.Assignment) error,
) (*assignment.Assignment, error) {
	a, err := s.assignmentRepo.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, assignment.ErrAssignmentNotFound
	}

	s.userLocks.Lock(a.UserID())
	defer s.userLocks.Unlock(a.UserID())

	a, err = s.assignmentRepo.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, assignment.ErrAssignmentNotFound
	}

	before := a.ToSnapshot()
	if err := fn(a); err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to persist %s: %w", action, err)
	}

	s.emit(a.TenantID(), actorID, action, a.ID(), before, a.ToSnapshot())
	return a, nil
}

func (s *Service) emit(tenantID, actorID, action, entityID string, before, after any) {
	s.auditor.Emit(audit.Entry{
		TenantID:       tenantID,
		ActorID:        actorID,
		Action:         action,
		EntityType:     audit.EntityTypeAssignment,
		EntityID:       entityID,
		BeforeSnapshot: before,
		AfterSnapshot:  after,
		OccurredAt:     time.Now().UTC(),
	})
}
