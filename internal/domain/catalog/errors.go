package catalog

import "errors"

var (
	// ErrEntitlementNotFound is returned when a referenced entitlement is absent
	ErrEntitlementNotFound = errors.New("entitlement not found")

	// ErrBlueprintNotFound is returned when a referenced blueprint is absent
	ErrBlueprintNotFound = errors.New("blueprint not found")

	// ErrResourceNotFound is returned when a referenced resource is absent
	ErrResourceNotFound = errors.New("resource not found")
)
