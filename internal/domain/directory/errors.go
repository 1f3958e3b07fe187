package directory

import "errors"

var (
	// ErrDirectoryUnavailable is returned when the directory does not answer
	ErrDirectoryUnavailable = errors.New("directory unavailable")
)
