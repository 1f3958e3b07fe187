package user

import "context"

// Repository defines the persistence port for users.
type Repository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID string) (*User, error)

	// GetByEmail retrieves a user by email within a tenant.
	// The lookup is case-insensitive.
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)

	// ListEnabled retrieves all enabled users for a tenant
	ListEnabled(ctx context.Context, tenantID string) ([]*User, error)

	// Update persists changes to a user record
	Update(ctx context.Context, u *User) error
}
