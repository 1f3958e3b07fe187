package ticketing

import "context"

// Gateway is the adapter port to the external ticket tracker. The adapter owns
// all wire-protocol and auth details; the engine depends only on this shape.
type Gateway interface {
	// ListTickets retrieves all tickets currently in the given logical queue
	ListTickets(ctx context.Context, queue Queue) ([]Ticket, error)

	// ResolveTicket issues the terminal resolve call with a closing comment.
	// It must be invoked at most once per fulfilled ticket.
	ResolveTicket(ctx context.Context, key, comment string) error
}
