// Package auth serves the login, logout and session bootstrap endpoints. Tokens issued
// by the backend are written to the caller's session, and the role decoded from the
// access token decides where the caller lands.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/guard"
)

// Backend represents the subset of the backend API used to log in
type Backend interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.TokenPair, error)
}

type Server struct {
	client Backend
	logger *slog.Logger
}

func NewServer(client Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		client: client,
		logger: logger,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	// Login endpoints: the form is served to browsers, and submitting it (or posting
	// JSON credentials) exchanges the user's credentials for backend tokens
	r.Path(dashboard.LoginPath).Methods("GET").HandlerFunc(s.handleLoginForm)
	r.Path(dashboard.LoginPath).Methods("POST").HandlerFunc(s.handleLogin)
	r.Path(dashboard.LogoutPath).Methods("POST").HandlerFunc(s.handleLogout)

	// Bootstrap endpoint: resolves the identity of the current session, once, when the
	// dashboard is first loaded
	r.Path(dashboard.SessionPath).Methods("GET").HandlerFunc(s.handleGetSession)

	// Profile of the logged-in caller, whatever their role: sessions whose token
	// carries no usable role can still see who they're logged in as
	r.Path(dashboard.ProfilePath).Methods("GET").Handler(guard.RequireAuth()(http.HandlerFunc(s.handleGetProfile)))
}
