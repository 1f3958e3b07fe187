package ticketsync

import (
	"time"

	"github.com/custos-grc/custos/internal/domain/ticketing"
)

// TicketOutcome classifies what one sync pass did with a single ticket.
type TicketOutcome string

const (
	// OutcomeApplied means the ticket caused at least one state change.
	OutcomeApplied TicketOutcome = "applied"
	// OutcomeNoop means the ticket was already fully processed.
	OutcomeNoop TicketOutcome = "noop"
	// OutcomeSkipped means the ticket could not be mapped to a safe action.
	// Skipped tickets stay in their queue for a human to look at.
	OutcomeSkipped TicketOutcome = "skipped"
	// OutcomeFailed means processing hit an error and will be retried on the
	// next pass.
	OutcomeFailed TicketOutcome = "failed"
)

// TicketResult is the per-ticket outcome of a sync pass.
type TicketResult struct {
	Key           string          `json:"key"`
	Queue         ticketing.Queue `json:"queue"`
	Outcome       TicketOutcome   `json:"outcome"`
	Detail        string          `json:"detail,omitempty"`
	AssignmentIDs []string        `json:"assignment_ids,omitempty"`
}

// SyncReport summarizes one full synchronization pass.
type SyncReport struct {
	TenantID   string    `json:"tenant_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PendingCount is the number of tickets awaiting a decision. Pending
	// tickets are observed only, never acted on.
	PendingCount int `json:"pending_count"`

	Results []TicketResult `json:"results"`

	// SourceErrors records queues that could not be pulled this pass. A
	// failing queue never blocks processing of the others.
	SourceErrors map[ticketing.Queue]string `json:"source_errors,omitempty"`

	// CatalogError is set when the entitlement catalog could not be loaded.
	// Approved tickets are skipped for the pass and stay in their queue;
	// done-queue finalization does not need the catalog and still runs.
	CatalogError string `json:"catalog_error,omitempty"`
}

// Counts tallies results by outcome.
func (r *SyncReport) Counts() map[TicketOutcome]int {
	counts := make(map[TicketOutcome]int)
	for _, result := range r.Results {
		counts[result.Outcome]++
	}
	return counts
}
