package catalog

import "fmt"

// Resource is a system or application that entitlements are scoped to.
type Resource struct {
	id          string
	tenantID    string
	name        string
	description string
}

// NewResource creates a resource definition.
func NewResource(resourceID, tenantID, name, description string) (*Resource, error) {
	if resourceID == "" {
		return nil, fmt.Errorf("resource ID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}

	return &Resource{
		id:          resourceID,
		tenantID:    tenantID,
		name:        name,
		description: description,
	}, nil
}

// ID returns the resource ID
func (r *Resource) ID() string { return r.id }

// TenantID returns the tenant ID
func (r *Resource) TenantID() string { return r.tenantID }

// Name returns the resource name
func (r *Resource) Name() string { return r.name }

// Description returns the descriptive text
func (r *Resource) Description() string { return r.description }
