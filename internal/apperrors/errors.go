// Package apperrors defines the error taxonomy shared by the planner services
// and maps it onto HTTP responses.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing request input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an operation targeting an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks a failed or timed-out external collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Validation returns an error wrapping ErrValidation with a caller-facing message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound for the given resource.
func NotFound(resource, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}

// Upstream wraps cause as ErrUpstreamUnavailable for the named service.
func Upstream(service string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, service)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, service, cause)
}
