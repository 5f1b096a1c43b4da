// Package session owns the dashboard's durable session state: the tokens issued by
// the backend at login and the role decoded from the access token. Handlers never
// touch the store directly; they go through the Provider attached to each request.
package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/fitplate/dashboard/internal/roles"
)

// Session is the dashboard's belief about the current caller
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         roles.Role
}

// Authenticated reports whether the session carries an access token. The role is
// not considered: it may lag behind if it could not be decoded.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Store persists sessions, keyed by the opaque ID held in the session cookie
type Store interface {
	// Get returns the session with the given ID, or a zero Session if there is none
	Get(ctx context.Context, id uuid.UUID) (Session, error)

	// Put writes all fields of a session in a single operation
	Put(ctx context.Context, id uuid.UUID, s Session) error

	// ClearAccessToken removes only the access token, leaving the session unauthenticated
	ClearAccessToken(ctx context.Context, id uuid.UUID) error

	// Delete removes the session entirely; deleting a missing session is not an error
	Delete(ctx context.Context, id uuid.UUID) error

	// Ping verifies that the store is reachable
	Ping(ctx context.Context) error
}
