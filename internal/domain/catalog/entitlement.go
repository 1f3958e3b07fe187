package catalog

import (
	"fmt"
)

// Entitlement is a named permission scoped to one resource, optionally mapped
// to an external directory group. Once referenced by an assignment only the
// descriptive fields may change.
type Entitlement struct {
	id              string
	resourceID      string
	tenantID        string
	name            string
	description     string
	riskLevel       RiskLevel
	isAdmin         bool
	externalMapping *string // external directory group, nil if unmanaged
}

// NewEntitlement creates an entitlement definition.
func NewEntitlement(
	entitlementID string,
	resourceID string,
	tenantID string,
	name string,
	riskLevel RiskLevel,
	isAdmin bool,
	externalMapping *string,
) (*Entitlement, error) {
	if entitlementID == "" {
		return nil, fmt.Errorf("entitlement ID is required")
	}
	if resourceID == "" {
		return nil, fmt.Errorf("resource ID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("entitlement name is required")
	}
	if !riskLevel.IsValid() {
		return nil, fmt.Errorf("invalid risk level: %s", riskLevel)
	}
	if externalMapping != nil && *externalMapping == "" {
		externalMapping = nil
	}

	return &Entitlement{
		id:              entitlementID,
		resourceID:      resourceID,
		tenantID:        tenantID,
		name:            name,
		riskLevel:       riskLevel,
		isAdmin:         isAdmin,
		externalMapping: externalMapping,
	}, nil
}

// ID returns the entitlement ID
func (e *Entitlement) ID() string { return e.id }

// ResourceID returns the owning resource ID
func (e *Entitlement) ResourceID() string { return e.resourceID }

// TenantID returns the tenant ID
func (e *Entitlement) TenantID() string { return e.tenantID }

// Name returns the entitlement name
func (e *Entitlement) Name() string { return e.name }

// Description returns the descriptive text
func (e *Entitlement) Description() string { return e.description }

// RiskLevel returns the risk classification
func (e *Entitlement) RiskLevel() RiskLevel { return e.riskLevel }

// IsAdmin reports whether the entitlement conveys administrative power
func (e *Entitlement) IsAdmin() bool { return e.isAdmin }

// ExternalMapping returns the mapped external directory group, nil if the
// entitlement is not externally managed
func (e *Entitlement) ExternalMapping() *string { return e.externalMapping }

// IsExternallyManaged reports whether the entitlement maps to a directory group
func (e *Entitlement) IsExternallyManaged() bool {
	return e.externalMapping != nil
}

// SetDescription updates the descriptive text. Descriptive fields stay mutable
// even after the entitlement is referenced by assignments.
func (e *Entitlement) SetDescription(description string) {
	e.description = description
}
