package user

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user is absent
	ErrUserNotFound = errors.New("user not found")
)
