package guard

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/session"
)

// RequireAuth only lets through requests whose session holds an access token
func RequireAuth() mux.MiddlewareFunc {
	return middleware(Authenticated)
}

// RequireRole only lets through requests whose session role is in the allow-list
func RequireRole(allow ...roles.Role) mux.MiddlewareFunc {
	return middleware(func(s session.Session) Decision {
		return Authorize(s, allow)
	})
}

func middleware(decide func(session.Session) Decision) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			var s session.Session
			if p := session.FromContext(req.Context()); p != nil {
				s = p.Session()
			}
			switch decide(s) {
			case Allow:
				next.ServeHTTP(res, req)
			case RedirectForbidden:
				RedirectToForbidden(res, req)
			default:
				RedirectToLogin(res, req)
			}
		})
	}
}
