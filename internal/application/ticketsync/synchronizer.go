// Package ticketsync pulls access tickets from the external tracker and
// converts their decisions into assignment state changes. The tracker is an
// append-only event source; the only write back is the terminal resolve call
// on a fulfilled request.
package ticketsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custos-grc/custos/internal/application/lifecycle"
	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/audit"
	"github.com/custos-grc/custos/internal/domain/catalog"
	"github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/domain/ticketing"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/shared/constants"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// actorTicketSync is the actor recorded on mutations driven by the tracker.
const actorTicketSync = "jira-sync"

// Synchronizer runs the ticket synchronization pass.
type Synchronizer struct {
	gateway        ticketing.Gateway
	matcher        ticketing.SummaryMatcher
	lifecycle      *lifecycle.Service
	assignmentRepo assignment.Repository
	userRepo       user.Repository
	catalogRepo    catalog.Repository
	dir            directory.Directory
	auditor        audit.Emitter
	logger         logger.Interface
}

// NewSynchronizer creates a synchronizer.
func NewSynchronizer(
	gateway ticketing.Gateway,
	matcher ticketing.SummaryMatcher,
	lifecycleSvc *lifecycle.Service,
	assignmentRepo assignment.Repository,
	userRepo user.Repository,
	catalogRepo catalog.Repository,
	dir directory.Directory,
	auditor audit.Emitter,
	log logger.Interface,
) *Synchronizer {
	return &Synchronizer{
		gateway:        gateway,
		matcher:        matcher,
		lifecycle:      lifecycleSvc,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		catalogRepo:    catalogRepo,
		dir:            dir,
		auditor:        auditor,
		logger:         log,
	}
}

// Sync runs one full synchronization pass for a tenant. The three queues are
// pulled concurrently; a queue that cannot be pulled is recorded in the report
// and the remaining queues are still processed.
func (s *Synchronizer) Sync(ctx context.Context, tenantID string) (*SyncReport, error) {
	report := &SyncReport{
		TenantID:     tenantID,
		StartedAt:    time.Now().UTC(),
		SourceErrors: make(map[ticketing.Queue]string),
	}

	tickets := make(map[ticketing.Queue][]ticketing.Ticket)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, queue := range ticketing.Queues() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pulled, err := s.gateway.ListTickets(ctx, queue)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warnw("failed to pull ticket queue",
					"tenant_id", tenantID,
					"queue", queue,
					"error", err,
				)
				report.SourceErrors[queue] = err.Error()
				return
			}
			tickets[queue] = pulled
		}()
	}
	wg.Wait()

	report.PendingCount = len(tickets[ticketing.QueuePending])

	// The done queue never consults the catalog, so a catalog outage only
	// parks the approved tickets; finalization below still runs.
	entitlements, err := s.catalogRepo.ListEntitlements(ctx, tenantID)
	if err != nil {
		s.logger.Errorw("failed to load entitlement catalog",
			"tenant_id", tenantID,
			"error", err,
		)
		report.CatalogError = err.Error()
		for _, t := range sortedByKey(tickets[ticketing.QueueApproved]) {
			result := TicketResult{Key: t.Key, Queue: ticketing.QueueApproved}
			report.Results = append(report.Results, s.skipped(result, "entitlement catalog unavailable"))
		}
	} else {
		for _, t := range sortedByKey(tickets[ticketing.QueueApproved]) {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Results = append(report.Results, s.processApproved(ctx, tenantID, t, entitlements))
		}
	}

	for _, t := range sortedByKey(tickets[ticketing.QueueDone]) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, s.processDone(ctx, tenantID, t))
	}

	if len(report.SourceErrors) == 0 {
		report.SourceErrors = nil
	}
	report.FinishedAt = time.Now().UTC()

	s.logger.Infow("ticket sync pass finished",
		"tenant_id", tenantID,
		"pending", report.PendingCount,
		"results", len(report.Results),
		"source_errors", len(report.SourceErrors),
	)
	return report, nil
}

// processApproved turns an approved access request into a grant and resolves
// the ticket. The jiraIssueKey link is the idempotency marker: a ticket whose
// key is already linked to an assignment was applied in an earlier pass.
func (s *Synchronizer) processApproved(
	ctx context.Context,
	tenantID string,
	t ticketing.Ticket,
	entitlements []*catalog.Entitlement,
) TicketResult {
	result := TicketResult{Key: t.Key, Queue: ticketing.QueueApproved}

	linked, err := s.assignmentRepo.FindByTicketKey(ctx, t.Key)
	if err != nil {
		return s.failed(result, "failed to check ticket link", err)
	}
	if len(linked) > 0 {
		result.Outcome = OutcomeNoop
		result.Detail = "ticket already linked to an assignment"
		result.AssignmentIDs = assignmentIDs(linked)
		return result
	}

	if t.RequestedUserEmail == "" {
		return s.skipped(result, "no requested user email on ticket")
	}

	u, err := s.userRepo.GetByEmail(ctx, tenantID, t.RequestedUserEmail)
	if err != nil {
		return s.failed(result, "failed to look up user", err)
	}
	if u == nil {
		return s.skipped(result, fmt.Sprintf("no user for email %s", t.RequestedUserEmail))
	}

	var matches []*catalog.Entitlement
	for _, e := range entitlements {
		if s.matcher.Matches(t.Summary, e.Name()) {
			matches = append(matches, e)
		}
	}
	switch {
	case len(matches) == 0:
		return s.skipped(result, "summary matches no catalog entitlement")
	case len(matches) > 1:
		names := make([]string, len(matches))
		for i, e := range matches {
			names[i] = e.Name()
		}
		return s.skipped(result, fmt.Sprintf("%s: %s",
			ticketing.ErrAmbiguousTicketMatch, strings.Join(names, ", ")))
	}
	entitlement := matches[0]

	issueKey := t.Key
	granted, err := s.lifecycle.Grant(ctx, lifecycle.GrantRequest{
		TenantID:      tenantID,
		ActorID:       actorTicketSync,
		UserID:        u.ID(),
		EntitlementID: entitlement.ID(),
		Origin: assignment.Origin{
			SyncSource:   assignment.SyncSourceJiraSync,
			TicketRef:    &issueKey,
			JiraIssueKey: &issueKey,
		},
	})
	switch {
	case err == nil:
		result.AssignmentIDs = []string{granted.ID()}
	case errors.Is(err, assignment.ErrDuplicateActiveGrant):
		// The user already holds the entitlement; link the ticket to the
		// existing grant instead of creating a second one.
		existing, lookupErr := s.assignmentRepo.FindActiveByUserAndEntitlement(ctx, tenantID, u.ID(), entitlement.ID())
		if lookupErr != nil || existing == nil {
			return s.failed(result, "failed to load existing grant for ticket link", lookupErr)
		}
		attached, attachErr := s.lifecycle.AttachTicket(ctx, actorTicketSync, existing.ID(), t.Key)
		if attachErr != nil {
			return s.failed(result, "failed to link ticket to existing grant", attachErr)
		}
		result.Detail = "linked to existing grant"
		result.AssignmentIDs = []string{attached.ID()}
	default:
		return s.failed(result, "failed to apply grant", err)
	}

	result.Outcome = OutcomeApplied

	// The grant is already persisted and linked, so a resolve failure is only
	// logged; the next pass sees the link and does not grant again.
	if err := s.gateway.ResolveTicket(ctx, t.Key, constants.TicketResolveComment); err != nil {
		s.logger.Warnw("failed to resolve fulfilled ticket",
			"ticket_key", t.Key,
			"error", err,
		)
		result.Detail = appendDetail(result.Detail, "resolve call failed, will stay in queue")
	}
	return result
}

// processDone finalizes internally tracked state for a ticket fulfilled
// outside the engine. Offboarding tickets remove every assignment the user
// holds and disable the user; regular tickets activate the requested
// assignments linked to them.
func (s *Synchronizer) processDone(ctx context.Context, tenantID string, t ticketing.Ticket) TicketResult {
	result := TicketResult{Key: t.Key, Queue: ticketing.QueueDone}

	if strings.Contains(strings.ToLower(t.Summary), constants.OffboardingMarker) {
		return s.finalizeOffboarding(ctx, tenantID, t, result)
	}

	targets, err := s.assignmentRepo.FindByTicketKey(ctx, t.Key)
	if err != nil {
		return s.failed(result, "failed to load linked assignments", err)
	}
	if len(targets) == 0 && t.RequestedUserEmail != "" {
		// Older tickets may predate the key link; fall back to the user's
		// requested assignments.
		u, err := s.userRepo.GetByEmail(ctx, tenantID, t.RequestedUserEmail)
		if err != nil {
			return s.failed(result, "failed to look up user", err)
		}
		if u != nil {
			all, err := s.assignmentRepo.FindByUser(ctx, tenantID, u.ID())
			if err != nil {
				return s.failed(result, "failed to load assignments", err)
			}
			for _, a := range all {
				if a.Status() == assignment.StatusRequested {
					targets = append(targets, a)
				}
			}
		}
	}
	if len(targets) == 0 {
		result.Outcome = OutcomeNoop
		result.Detail = "no assignments to finalize"
		return result
	}

	changedAny := false
	for _, id := range assignmentIDs(targets) {
		changed, err := s.lifecycle.Finalize(ctx, actorTicketSync, id, assignment.StatusActive, time.Now().UTC())
		if err != nil {
			return s.failed(result, fmt.Sprintf("failed to finalize assignment %s", id), err)
		}
		changedAny = changedAny || changed
		result.AssignmentIDs = append(result.AssignmentIDs, id)
	}

	if changedAny {
		result.Outcome = OutcomeApplied
	} else {
		result.Outcome = OutcomeNoop
		result.Detail = "already finalized"
	}
	return result
}

func (s *Synchronizer) finalizeOffboarding(
	ctx context.Context,
	tenantID string,
	t ticketing.Ticket,
	result TicketResult,
) TicketResult {
	if t.RequestedUserEmail == "" {
		return s.skipped(result, "offboarding ticket carries no user email")
	}

	u, err := s.userRepo.GetByEmail(ctx, tenantID, t.RequestedUserEmail)
	if err != nil {
		return s.failed(result, "failed to look up user", err)
	}
	if u == nil {
		return s.skipped(result, fmt.Sprintf("no user for email %s", t.RequestedUserEmail))
	}

	all, err := s.assignmentRepo.FindByUser(ctx, tenantID, u.ID())
	if err != nil {
		return s.failed(result, "failed to load assignments", err)
	}

	var open []*assignment.Assignment
	for _, a := range all {
		if a.Status() != assignment.StatusRemoved {
			open = append(open, a)
		}
	}

	now := time.Now().UTC()
	changedAny := false
	for _, id := range assignmentIDs(open) {
		changed, err := s.lifecycle.Finalize(ctx, actorTicketSync, id, assignment.StatusRemoved, now)
		if err != nil {
			return s.failed(result, fmt.Sprintf("failed to remove assignment %s", id), err)
		}
		changedAny = changedAny || changed
		result.AssignmentIDs = append(result.AssignmentIDs, id)
	}

	if u.Offboard(now) {
		if err := s.userRepo.Update(ctx, u); err != nil {
			return s.failed(result, "failed to disable user", err)
		}
		s.auditor.Emit(audit.Entry{
			TenantID:      tenantID,
			ActorID:       actorTicketSync,
			Action:        "user offboarded",
			EntityType:    audit.EntityTypeUser,
			EntityID:      u.ID(),
			AfterSnapshot: map[string]any{"enabled": false, "offboarding_date": now},
			OccurredAt:    now,
		})
		changedAny = true
	}

	if changedAny {
		// The cached directory snapshot predates the offboarding; drop it so
		// the next drift read sees the directory catch up.
		if inv, ok := s.dir.(directory.SnapshotInvalidator); ok {
			if err := inv.InvalidateUser(ctx, u.ID()); err != nil {
				s.logger.Warnw("failed to drop directory snapshot",
					"user_id", u.ID(),
					"error", err,
				)
			}
		}
		result.Outcome = OutcomeApplied
	} else {
		result.Outcome = OutcomeNoop
		result.Detail = "user already offboarded"
	}
	return result
}

func (s *Synchronizer) skipped(result TicketResult, detail string) TicketResult {
	s.logger.Infow("ticket skipped",
		"ticket_key", result.Key,
		"queue", result.Queue,
		"reason", detail,
	)
	result.Outcome = OutcomeSkipped
	result.Detail = detail
	return result
}

func (s *Synchronizer) failed(result TicketResult, detail string, err error) TicketResult {
	s.logger.Errorw("ticket processing failed",
		"ticket_key", result.Key,
		"queue", result.Queue,
		"detail", detail,
		"error", err,
	)
	result.Outcome = OutcomeFailed
	if err != nil {
		detail = fmt.Sprintf("%s: %s", detail, err)
	}
	result.Detail = detail
	return result
}

func appendDetail(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}

// sortedByKey orders tickets by key for deterministic processing.
func sortedByKey(tickets []ticketing.Ticket) []ticketing.Ticket {
	sorted := make([]ticketing.Ticket, len(tickets))
	copy(sorted, tickets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return sorted
}

// assignmentIDs extracts IDs sorted ascending so multi-assignment
// finalization runs in a stable order.
func assignmentIDs(assignments []*assignment.Assignment) []string {
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID()
	}
	sort.Strings(ids)
	return ids
}
