// Package server assembles the dashboard's HTTP routes: public pages, the admin area
// and the user area, each behind the appropriate guard
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard"
	"github.com/fitplate/dashboard/internal/admin"
	"github.com/fitplate/dashboard/internal/assessment"
	"github.com/fitplate/dashboard/internal/auth"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/catalog"
	"github.com/fitplate/dashboard/internal/forbidden"
	"github.com/fitplate/dashboard/internal/guard"
	"github.com/fitplate/dashboard/internal/health"
	"github.com/fitplate/dashboard/internal/mealplan"
	"github.com/fitplate/dashboard/internal/payments"
	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/search"
	"github.com/fitplate/dashboard/internal/session"
	"github.com/fitplate/dashboard/internal/storage"
	"github.com/fitplate/dashboard/internal/users"
)

// Options tunes the behavior of the dashboard
type Options struct {
	CookieSecure        bool
	SearchDebounce      time.Duration
	PaymentPollInterval time.Duration
	CountdownStart      int
	CountdownInterval   time.Duration
}

// DefaultOptions returns the options used in production
func DefaultOptions() Options {
	return Options{
		SearchDebounce:      search.DefaultWindow,
		PaymentPollInterval: payments.DefaultPollInterval,
		CountdownStart:      forbidden.CountdownStart,
		CountdownInterval:   forbidden.CountdownInterval,
	}
}

type Server struct {
	http.Handler
}

// New builds the dashboard router. Long-lived streams are closed when ctx is canceled.
// archive may be nil, in which case body images are not archived.
func New(ctx context.Context, store session.Store, client *backend.Client, archive storage.ArchiveClient, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(logRequests(logger))
	r.Use(recoverPanics(logger))

	// Health checks are served without a session, so that load balancer checks never create one
	r.Path(dashboard.HealthPath).Methods("GET").Handler(health.NewServer(store.Ping, client.Ping))

	// Every other route has the caller's session attached to the request context
	app := r.NewRoute().Subrouter()
	app.Use(session.Middleware(store, client, session.CookieOptions{Secure: opts.CookieSecure}, logger))
	app.Path("/").Methods("GET").HandlerFunc(handleRoot)
	auth.NewServer(client, logger).RegisterRoutes(app)
	forbidden.NewServer(opts.CountdownStart, opts.CountdownInterval, logger).RegisterRoutes(app)

	// Admin area: catalog management and moderation
	adminArea := app.PathPrefix("/admin").Subrouter()
	adminArea.Use(guard.RequireRole(roles.Admin))
	admin.NewServer(logger).RegisterRoutes(adminArea)
	users.NewServer(client, logger).RegisterRoutes(adminArea)
	catalog.NewServer(ctx, client, search.NewDebouncer(opts.SearchDebounce), logger).RegisterRoutes(adminArea)

	// User area: meal plans, assessments and subscriptions
	userArea := app.PathPrefix("/user").Subrouter()
	userArea.Use(guard.RequireRole(roles.User))
	mealplan.NewServer(client, logger).RegisterRoutes(userArea)
	assessment.NewServer(client, archive, logger).RegisterRoutes(userArea)
	payments.NewServer(ctx, client, opts.PaymentPollInterval, logger).RegisterRoutes(userArea)

	return &Server{Handler: r}
}

// handleRoot sends the caller to their landing page, or to log in
func handleRoot(res http.ResponseWriter, req *http.Request) {
	var s session.Session
	if p := session.FromContext(req.Context()); p != nil {
		s = p.Session()
	}
	target := dashboard.LoginPath
	if guard.Authorize(s, []roles.Role{roles.Admin, roles.User}) == guard.Allow {
		target = roles.LandingPath(s.Role)
	}
	http.Redirect(res, req, target, http.StatusSeeOther)
}
