package loader

import "errors"

var (
	// ErrPathRequired is returned when Load is called with an empty path
	ErrPathRequired = errors.New("pdf path is required")

	// ErrNotAFile is returned when the path names a directory
	ErrNotAFile = errors.New("pdf path is not a regular file")
)
