package ai

import "errors"

var (
	// ErrNoCredentials is returned when neither provider credential is present.
	ErrNoCredentials = errors.New("ai config: no provider credentials")

	// ErrConfigRequired is returned when a nil Config is supplied.
	ErrConfigRequired = errors.New("ai config required")
)
