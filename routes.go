package dashboard

// Paths that the guards, the forbidden view and the login flow navigate between
const (
	LoginPath     = "/login"
	LogoutPath    = "/logout"
	ForbiddenPath = "/forbidden"
	SessionPath   = "/api/session"
	ProfilePath   = "/api/profile"
	HealthPath    = "/healthz"

	// AdminLandingPath is where an ADMIN lands after login when no other destination
	// was remembered
	AdminLandingPath = "/admin/foods"

	// UserLandingPath is where a USER lands after login when no other destination was
	// remembered
	UserLandingPath = "/user/current-plan"
)
