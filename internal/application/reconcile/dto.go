package reconcile

import "time"

// TargetState is the resolved desired access for one user: the union of the
// user's live assignments and the blueprint baseline for their job title.
type TargetState struct {
	UserID         string
	TenantID       string
	EntitlementIDs []string // sorted
	BlueprintID    *string  // nil when no blueprint matched
}

// DriftReport is the outcome of one drift computation. The engine reports
// drift, it never provisions or deprovisions anything to fix it.
type DriftReport struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id"`
	ComputedAt time.Time `json:"computed_at"`

	// TargetGroups are the external groups the user should hold.
	TargetGroups []string `json:"target_groups"`
	// ActualGroups is the directory snapshot the comparison ran against.
	ActualGroups []string `json:"actual_groups"`
	// MissingGroups are target groups the directory does not show.
	MissingGroups []string `json:"missing_groups"`
	// ExtraGroups are catalog-managed groups the user holds without a
	// corresponding target entitlement. Groups the catalog does not manage
	// are never reported.
	ExtraGroups []string `json:"extra_groups"`

	Score int `json:"score"`

	// ExpiredAssignmentIDs lists active assignments whose validity window has
	// passed. Surfaced for escalation only.
	ExpiredAssignmentIDs []string `json:"expired_assignment_ids,omitempty"`
}

// HasDrift reports whether the directory state deviates from the target.
func (r *DriftReport) HasDrift() bool {
	return len(r.MissingGroups) > 0 || len(r.ExtraGroups) > 0
}

// TenantDriftSummary aggregates a tenant-wide drift recomputation run.
type TenantDriftSummary struct {
	TenantID   string         `json:"tenant_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Reports    []*DriftReport `json:"reports"`
	// Failures maps user ID to the error that prevented their report. One
	// user failing never aborts the run.
	Failures map[string]string `json:"failures,omitempty"`
}
