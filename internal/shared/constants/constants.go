package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType = "Content-Type"
	HeaderXRequestID  = "X-Request-ID"

	// Content Types
	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyTenantID  = "tenant_id"
	ContextKeyActorID   = "actor_id"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableUsers        = "users"
	TableResources    = "resources"
	TableEntitlements = "entitlements"
	TableBlueprints   = "blueprints"
	TableAssignments  = "assignments"
	TableAuditLogs    = "audit_logs"

	// Ticket resolution
	TicketResolveComment = "Access request fulfilled by governance engine."

	// Offboarding marker looked for in ticket summaries (case-insensitive).
	OffboardingMarker = "offboarding"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgValidationFailed    = "Validation failed"
	ErrMsgConflict            = "Resource already exists"
)
