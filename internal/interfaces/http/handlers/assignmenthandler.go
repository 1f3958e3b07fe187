package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custos-grc/custos/internal/application/lifecycle"
	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/interfaces/http/middleware"
	"github.com/custos-grc/custos/internal/shared/logger"
	"github.com/custos-grc/custos/internal/shared/utils"
)

// AssignmentHandler handles HTTP requests for assignment lifecycle operations
type AssignmentHandler struct {
	service *lifecycle.Service
	logger  logger.Interface
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(service *lifecycle.Service, logger logger.Interface) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger,
	}
}

// GrantRequest is the body for POST /assignments.
type GrantRequest struct {
	UserID        string     `json:"user_id" binding:"required"`
	EntitlementID string     `json:"entitlement_id" binding:"required"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	SyncSource    string     `json:"sync_source,omitempty"`
	OriginGroupID *string    `json:"origin_group_id,omitempty"`
}

// RevokeRequest is the body for POST /assignments/:id/revoke.
type RevokeRequest struct {
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

// AttachTicketRequest is the body for POST /assignments/:id/ticket.
type AttachTicketRequest struct {
	IssueKey string `json:"issue_key" binding:"required,ticketkey"`
}

// Grant handles POST /assignments
func (h *AssignmentHandler) Grant(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}

	syncSource := assignment.SyncSourceManual
	if req.SyncSource != "" {
		syncSource = assignment.SyncSource(req.SyncSource)
		if !syncSource.IsValid() {
			utils.ErrorResponse(c, http.StatusBadRequest, "validation_error", "invalid sync source", req.SyncSource)
			return
		}
	}

	a, err := h.service.Grant(c.Request.Context(), lifecycle.GrantRequest{
		TenantID:      middleware.TenantID(c),
		ActorID:       middleware.ActorID(c),
		UserID:        req.UserID,
		EntitlementID: req.EntitlementID,
		ValidUntil:    req.ValidUntil,
		Origin: assignment.Origin{
			SyncSource:    syncSource,
			OriginGroupID: req.OriginGroupID,
		},
	})
	if err != nil {
		h.logger.Errorw("failed to grant assignment",
			"error", err,
			"user_id", req.UserID,
			"entitlement_id", req.EntitlementID,
		)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.CreatedResponse(c, toAssignmentResponse(a), "Assignment granted")
}

// Certify handles POST /assignments/:id/certify
func (h *AssignmentHandler) Certify(c *gin.Context) {
	assignmentID := c.Param("id")

	a, err := h.service.Certify(c.Request.Context(), middleware.ActorID(c), assignmentID)
	if err != nil {
		h.logger.Errorw("failed to certify assignment", "error", err, "assignment_id", assignmentID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Assignment certified", toAssignmentResponse(a))
}

// Revoke handles POST /assignments/:id/revoke
func (h *AssignmentHandler) Revoke(c *gin.Context) {
	assignmentID := c.Param("id")

	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}

	effective := time.Now().UTC()
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}

	a, err := h.service.Revoke(c.Request.Context(), middleware.ActorID(c), assignmentID, effective)
	if err != nil {
		h.logger.Warnw("failed to revoke assignment", "error", err, "assignment_id", assignmentID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Assignment revoked", toAssignmentResponse(a))
}

// AttachTicket handles POST /assignments/:id/ticket
func (h *AssignmentHandler) AttachTicket(c *gin.Context) {
	assignmentID := c.Param("id")

	var req AttachTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "validation_error", "invalid request body", err.Error())
		return
	}

	a, err := h.service.AttachTicket(c.Request.Context(), middleware.ActorID(c), assignmentID, req.IssueKey)
	if err != nil {
		h.logger.Errorw("failed to attach ticket", "error", err, "assignment_id", assignmentID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ticket attached", toAssignmentResponse(a))
}

// ListUserAssignments handles GET /users/:id/assignments
func (h *AssignmentHandler) ListUserAssignments(c *gin.Context) {
	userID := c.Param("id")

	assignments, err := h.service.ListForUser(c.Request.Context(), middleware.TenantID(c), userID)
	if err != nil {
		h.logger.Errorw("failed to list assignments", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"assignments": toAssignmentResponses(assignments),
	})
}

// ListExpired handles GET /users/:id/assignments/expired
func (h *AssignmentHandler) ListExpired(c *gin.Context) {
	userID := c.Param("id")

	expired, err := h.service.ListExpired(c.Request.Context(), middleware.TenantID(c), userID, time.Now().UTC())
	if err != nil {
		h.logger.Errorw("failed to list expired assignments", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, mapDomainError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"assignments": toAssignmentResponses(expired),
	})
}
