package ticketing

import "errors"

var (
	// ErrAmbiguousTicketMatch is returned when a ticket cannot be uniquely
	// resolved to a user and entitlement. The synchronizer records it as a
	// skipped item rather than aborting the batch.
	ErrAmbiguousTicketMatch = errors.New("cannot uniquely resolve user or entitlement from ticket")

	// ErrGatewayUnavailable is returned when the ticket tracker does not answer
	ErrGatewayUnavailable = errors.New("ticket gateway unavailable")
)
