// Package user provides the minimal user model the reconciliation engine needs:
// identity for ticket matching, job title for blueprint resolution, and the
// enabled flag plus offboarding date for offboarding finalization.
package user

import (
	"fmt"
	"strings"
	"time"
)

// User is the aggregate root for a governed identity.
type User struct {
	id              string
	tenantID        string
	email           string
	displayName     string
	jobTitle        string
	departmentID    string
	enabled         bool
	offboardingDate *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// NewUser creates an enabled user.
func NewUser(userID, tenantID, email, displayName, jobTitle, departmentID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}

	now := time.Now().UTC()
	return &User{
		id:           userID,
		tenantID:     tenantID,
		email:        strings.ToLower(email),
		displayName:  displayName,
		jobTitle:     jobTitle,
		departmentID: departmentID,
		enabled:      true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser reconstructs a user from persistence.
func ReconstructUser(
	userID, tenantID, email, displayName, jobTitle, departmentID string,
	enabled bool,
	offboardingDate *time.Time,
	createdAt, updatedAt time.Time,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	return &User{
		id:              userID,
		tenantID:        tenantID,
		email:           strings.ToLower(email),
		displayName:     displayName,
		jobTitle:        jobTitle,
		departmentID:    departmentID,
		enabled:         enabled,
		offboardingDate: offboardingDate,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

// ID returns the user ID
func (u *User) ID() string { return u.id }

// TenantID returns the tenant ID
func (u *User) TenantID() string { return u.tenantID }

// Email returns the lower-cased email address
func (u *User) Email() string { return u.email }

// DisplayName returns the display name
func (u *User) DisplayName() string { return u.displayName }

// JobTitle returns the job title used for blueprint matching
func (u *User) JobTitle() string { return u.jobTitle }

// DepartmentID returns the department
func (u *User) DepartmentID() string { return u.departmentID }

// Enabled reports whether the user is active in the organization
func (u *User) Enabled() bool { return u.enabled }

// OffboardingDate returns when the user was offboarded, nil if never
func (u *User) OffboardingDate() *time.Time { return u.offboardingDate }

// CreatedAt returns when the record was created
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns when the record was last updated
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Offboard disables the user and stamps the offboarding date. Calling it on an
// already-offboarded user is a no-op so ticket finalization stays idempotent.
func (u *User) Offboard(date time.Time) bool {
	if !u.enabled && u.offboardingDate != nil {
		return false
	}
	u.enabled = false
	u.offboardingDate = &date
	u.updatedAt = time.Now().UTC()
	return true
}
