// Package users serves the admin dashboard's moderation pages
package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/session"
)

// Backend represents the subset of the backend API used to moderate users
type Backend interface {
	ListUsers(ctx context.Context, token string, params backend.ListParams) (*backend.Page[backend.UserSummary], error)
	BanUser(ctx context.Context, token, userId string) error
	UnbanUser(ctx context.Context, token, userId string) error
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

// RegisterRoutes adds the moderation routes to r, which is expected to be mounted at
// /admin behind a guard that only admits admins
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/users").Methods("GET").HandlerFunc(s.handleList)
	r.Path("/users/{id}/ban").Methods("POST").HandlerFunc(s.handleBan)
	r.Path("/users/{id}/unban").Methods("POST").HandlerFunc(s.handleUnban)
}

func (s *Server) handleList(res http.ResponseWriter, req *http.Request) {
	params, err := backend.ParseListParams(req.URL.Query())
	if err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, err.Error())
		return
	}
	page, err := s.client.ListUsers(req.Context(), session.AccessToken(req.Context()), params)
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(page); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleBan(res http.ResponseWriter, req *http.Request) {
	s.moderate(res, req, "banned", s.client.BanUser)
}

func (s *Server) handleUnban(res http.ResponseWriter, req *http.Request) {
	s.moderate(res, req, "unbanned", s.client.UnbanUser)
}

func (s *Server) moderate(res http.ResponseWriter, req *http.Request, action string, f func(ctx context.Context, token, userId string) error) {
	userId := mux.Vars(req)["id"]
	if err := f(req.Context(), session.AccessToken(req.Context()), userId); err != nil {
		apierror.Write(res, req, err)
		return
	}
	s.logger.Info("moderated user", "user", userId, "action", action, "session", sessionId(req))
	res.WriteHeader(http.StatusNoContent)
}

func sessionId(req *http.Request) string {
	if p := session.FromContext(req.Context()); p != nil {
		return p.ID().String()
	}
	return ""
}
