package auth

import (
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/roles"
)

// SessionState describes the caller's session to the dashboard frontend
type SessionState struct {
	Authenticated bool              `json:"authenticated"`
	Role          roles.Role        `json:"role,omitempty"`
	Identity      *backend.Identity `json:"identity,omitempty"`
	Redirect      string            `json:"redirect,omitempty"`
	Error         string            `json:"error,omitempty"`
}
