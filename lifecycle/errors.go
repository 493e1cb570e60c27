package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidTransition is returned for a status change the state
	// machine does not allow, including same-status updates.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized means no authenticated actor was supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied means the actor's role does not permit the action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound means the referenced issue does not exist.
	ErrNotFound = errors.New("issue not found")

	// ErrUnavailable wraps transient backing-store failures.
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError reports every invalid submission field, not just the first.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}
