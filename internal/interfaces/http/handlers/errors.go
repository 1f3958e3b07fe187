package handlers

import (
	stderrors "errors"

	"github.com/custos-grc/custos/internal/domain/assignment"
	"github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/domain/ticketing"
	"github.com/custos-grc/custos/internal/domain/user"
	"github.com/custos-grc/custos/internal/shared/errors"
)

// mapDomainError translates domain sentinels into AppErrors carrying an HTTP
// status. Unknown errors pass through and surface as 500.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, assignment.ErrAssignmentNotFound):
		return errors.NewNotFoundError("assignment not found")
	case stderrors.Is(err, user.ErrUserNotFound):
		return errors.NewNotFoundError("user not found")
	case stderrors.Is(err, assignment.ErrDuplicateActiveGrant):
		return errors.NewConflictError("active assignment already exists for this user and entitlement")
	case stderrors.Is(err, assignment.ErrGroupManagedAssignment):
		return errors.NewForbiddenError("assignment is group-managed and cannot be revoked directly")
	case stderrors.Is(err, assignment.ErrUserIDRequired),
		stderrors.Is(err, assignment.ErrEntitlementIDRequired),
		stderrors.Is(err, assignment.ErrTenantIDRequired):
		return errors.NewValidationError(err.Error())
	case stderrors.Is(err, directory.ErrDirectoryUnavailable):
		return errors.NewUnavailableError("directory unavailable", err.Error())
	case stderrors.Is(err, ticketing.ErrGatewayUnavailable):
		return errors.NewUnavailableError("ticket gateway unavailable", err.Error())
	default:
		return err
	}
}
