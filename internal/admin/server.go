// Package admin serves details about the logged-in admin, for display in the admin
// dashboard's header
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/session"
)

// Profile describes the admin who is logged in
type Profile struct {
	Role     roles.Role        `json:"role"`
	Identity *backend.Identity `json:"identity"`
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger}
}

// RegisterRoutes adds GET /me to r, which is expected to be mounted at /admin behind a
// guard that only admits admins
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/me").Methods("GET").Handler(s)
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	p := session.FromContext(req.Context())
	if p == nil {
		http.Error(res, "no session", http.StatusInternalServerError)
		return
	}

	// A profile that can't be loaded is shown as a blank header, not an error
	data := Profile{
		Role:     p.Session().Role,
		Identity: p.FetchIdentity(req.Context()),
	}
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(data); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}
