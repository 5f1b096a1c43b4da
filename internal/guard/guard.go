// Package guard decides whether a request may reach a protected route, based solely
// on the contents of the caller's session. Decisions are recomputed on every request.
package guard

import (
	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/session"
)

// Decision is the outcome of evaluating a guard
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectForbidden:
		return "redirect-forbidden"
	}
	return "unknown"
}

// Authenticated admits any session that holds an access token
func Authenticated(s session.Session) Decision {
	if !s.Authenticated() {
		return RedirectLogin
	}
	return Allow
}

// Authorize admits sessions that hold an access token and a role in the allow-list.
// A session without a token or without a recognized role must log in; a session
// whose role is not allowed is forbidden.
func Authorize(s session.Session, allow []roles.Role) Decision {
	if !s.Authenticated() || !s.Role.Valid() {
		return RedirectLogin
	}
	for _, r := range allow {
		if r == s.Role {
			return Allow
		}
	}
	return RedirectForbidden
}
