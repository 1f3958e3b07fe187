// Package audit defines the audit side channel. Every state mutation in the
// reconciliation engine produces exactly one entry; storage and retention of
// the trail belong to infrastructure.
package audit

import "time"

// Entry is a single audit record describing one mutation.
type Entry struct {
	TenantID       string
	ActorID        string
	Action         string // human-readable, e.g. "assignment granted"
	EntityType     string
	EntityID       string
	BeforeSnapshot any // nil for creations
	AfterSnapshot  any
	OccurredAt     time.Time
}

// EntityTypeAssignment is the entity type for assignment mutations.
const EntityTypeAssignment = "assignment"

// EntityTypeUser is the entity type for user mutations (offboarding).
const EntityTypeUser = "user"

// Emitter is the fire-and-forget audit port. Implementations must never block
// or fail the mutating operation they record.
type Emitter interface {
	Emit(entry Entry)
}

// NopEmitter discards all entries. Useful for tests and tooling.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(Entry) {}
