// Package apperr defines the typed error taxonomy surfaced by the
// approval core. Handlers map these to HTTP statuses; everything else
// falls back to a generic server error.
package apperr

import (
	"fmt"
	"strings"
)

// NotFoundError signals an absent request, approval or user.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFound builds a NotFoundError for a named resource.
func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// TerminalStateError signals a decision made on an axis that has
// already reached Approved or Rejected.
type TerminalStateError struct {
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("Request has been %s already", strings.ToLower(e.Status))
}

// NewTerminalState builds a TerminalStateError carrying the status the
// row is stuck in.
func NewTerminalState(status string) *TerminalStateError {
	return &TerminalStateError{Status: status}
}

// PermissionError signals an actor who is not entitled to perform the
// operation.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return e.Reason
}

// ValidationError signals a malformed input value, e.g. a decision
// outside {Approved, Rejected}.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DependencyError wraps a failure from storage, the directory or
// messaging. Messaging failures never leave the notifier boundary.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
