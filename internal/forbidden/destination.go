// Package forbidden serves the view that under-privileged or logged-out visitors land
// on, which counts down and then sends them somewhere they're allowed to be.
package forbidden

import (
	"github.com/fitplate/dashboard/internal/guard"
	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/session"
)

// Destination resolves where the forbidden view should send the visitor: to log in
// (keeping the originally requested path) if they have no token, or otherwise to the
// landing page for their role
func Destination(s session.Session, from string) string {
	if !s.Authenticated() {
		return guard.LoginURL(from)
	}
	return roles.LandingPath(s.Role)
}
