package catalog

import "fmt"

// Blueprint is a job-title role profile: the baseline entitlement set expected
// for anyone holding that title. Blueprints are administered elsewhere and
// read-only to the reconciliation engine.
type Blueprint struct {
	id             string
	tenantID       string
	jobTitle       string
	departmentID   string
	entitlementIDs []string // ordered for stable output, semantically a set
}

// NewBlueprint creates a blueprint definition.
func NewBlueprint(
	blueprintID string,
	tenantID string,
	jobTitle string,
	departmentID string,
	entitlementIDs []string,
) (*Blueprint, error) {
	if blueprintID == "" {
		return nil, fmt.Errorf("blueprint ID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if jobTitle == "" {
		return nil, fmt.Errorf("job title is required")
	}

	// Deduplicate while preserving first-seen order.
	seen := make(map[string]struct{}, len(entitlementIDs))
	ids := make([]string, 0, len(entitlementIDs))
	for _, entID := range entitlementIDs {
		if entID == "" {
			continue
		}
		if _, ok := seen[entID]; ok {
			continue
		}
		seen[entID] = struct{}{}
		ids = append(ids, entID)
	}

	return &Blueprint{
		id:             blueprintID,
		tenantID:       tenantID,
		jobTitle:       jobTitle,
		departmentID:   departmentID,
		entitlementIDs: ids,
	}, nil
}

// ID returns the blueprint ID
func (b *Blueprint) ID() string { return b.id }

// TenantID returns the tenant ID
func (b *Blueprint) TenantID() string { return b.tenantID }

// JobTitle returns the job title this blueprint applies to
func (b *Blueprint) JobTitle() string { return b.jobTitle }

// DepartmentID returns the owning department
func (b *Blueprint) DepartmentID() string { return b.departmentID }

// EntitlementIDs returns a copy of the baseline entitlement IDs
func (b *Blueprint) EntitlementIDs() []string {
	ids := make([]string, len(b.entitlementIDs))
	copy(ids, b.entitlementIDs)
	return ids
}

// Includes reports whether the blueprint contains the given entitlement
func (b *Blueprint) Includes(entitlementID string) bool {
	for _, entID := range b.entitlementIDs {
		if entID == entitlementID {
			return true
		}
	}
	return false
}
