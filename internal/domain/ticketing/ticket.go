// Package ticketing provides the engine's view of the external ticket tracker:
// a read-mostly ticket model, the gateway port, and the summary matching
// strategy used to resolve tickets to entitlements.
package ticketing

import "time"

// Queue is a logical partition of the remote ticket set, derived from status
// labels configured per deployment.
type Queue string

const (
	// QueuePending holds tickets not yet decided
	QueuePending Queue = "pending"
	// QueueApproved holds tickets with a decision made but not yet fulfilled
	QueueApproved Queue = "approved"
	// QueueDone holds tickets fulfilled externally, awaiting internal finalization
	QueueDone Queue = "done"
)

// IsValid checks if the queue is valid
func (q Queue) IsValid() bool {
	switch q {
	case QueuePending, QueueApproved, QueueDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the queue
func (q Queue) String() string {
	return string(q)
}

// Queues lists all logical queues in processing order.
func Queues() []Queue {
	return []Queue{QueuePending, QueueApproved, QueueDone}
}

// Ticket is the engine's read-mostly view of an external ticket. The engine
// treats tickets as an append-only event source; it never mutates ticket
// content beyond a terminal resolve call.
type Ticket struct {
	Key                string
	Summary            string
	Status             string
	Reporter           string
	Created            time.Time
	RequestedUserEmail string // best-effort extracted, may be empty
}
