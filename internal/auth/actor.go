// Package auth holds the authenticated-actor value produced by the
// auth middleware and passed into every core operation. Core code
// never reads claims or request objects directly.
package auth

import "github.com/google/uuid"

// AuthenticatedActor identifies the user performing an operation.
type AuthenticatedActor struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Picture  string
	RoleID   int
	Location string
}
