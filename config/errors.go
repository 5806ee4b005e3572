// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials indicates neither GOOGLE_API_KEY nor OPENAI_API_KEY is set.
	ErrMissingCredentials = errors.New("missing provider credentials")

	// ErrMissingVariable indicates a required variable is unset or empty.
	ErrMissingVariable = errors.New("missing environment variable")

	// ErrInvalidValue indicates a variable could not be parsed.
	ErrInvalidValue = errors.New("invalid environment variable value")
)

// ValidationError reports a configuration problem in user-facing terms.
type ValidationError struct {
	// Variable is the offending environment variable, empty for credential errors.
	Variable string
	Err      error
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingCredentials):
		return "At least one of GOOGLE_API_KEY or OPENAI_API_KEY must be set"
	case errors.Is(e.Err, ErrMissingVariable):
		return fmt.Sprintf("Environment variable %s is not set", e.Variable)
	default:
		return fmt.Sprintf("Environment variable %s is invalid", e.Variable)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
