package handlers

import (
	"time"

	"github.com/custos-grc/custos/internal/domain/assignment"
)

// AssignmentResponse is the wire representation of an assignment.
type AssignmentResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	EntitlementID  string     `json:"entitlement_id"`
	TenantID       string     `json:"tenant_id"`
	Status         string     `json:"status"`
	GrantedBy      string     `json:"granted_by"`
	GrantedAt      time.Time  `json:"granted_at"`
	ValidFrom      time.Time  `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	ReviewedBy     *string    `json:"reviewed_by,omitempty"`
	OriginGroupID  *string    `json:"origin_group_id,omitempty"`
	SyncSource     string     `json:"sync_source"`
	TicketRef      *string    `json:"ticket_ref,omitempty"`
	JiraIssueKey   *string    `json:"jira_issue_key,omitempty"`
	GroupManaged   bool       `json:"group_managed"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toAssignmentResponse(a *assignment.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:             a.ID(),
		UserID:         a.UserID(),
		EntitlementID:  a.EntitlementID(),
		TenantID:       a.TenantID(),
		Status:         string(a.Status()),
		GrantedBy:      a.GrantedBy(),
		GrantedAt:      a.GrantedAt(),
		ValidFrom:      a.ValidFrom(),
		ValidUntil:     a.ValidUntil(),
		LastReviewedAt: a.LastReviewedAt(),
		ReviewedBy:     a.ReviewedBy(),
		OriginGroupID:  a.OriginGroupID(),
		SyncSource:     string(a.SyncSource()),
		TicketRef:      a.TicketRef(),
		JiraIssueKey:   a.JiraIssueKey(),
		GroupManaged:   a.IsGroupManaged(),
		Version:        a.Version(),
		CreatedAt:      a.CreatedAt(),
		UpdatedAt:      a.UpdatedAt(),
	}
}

func toAssignmentResponses(assignments []*assignment.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, toAssignmentResponse(a))
	}
	return responses
}
