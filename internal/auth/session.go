package auth

import (
	"encoding/json"
	"net/http"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/session"
)

func (s *Server) handleGetSession(res http.ResponseWriter, req *http.Request) {
	var state SessionState
	if p := session.FromContext(req.Context()); p != nil {
		sess := p.Session()
		state.Authenticated = sess.Authenticated()
		state.Role = sess.Role
		state.Identity = p.FetchIdentity(req.Context())
	}
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(state); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleGetProfile(res http.ResponseWriter, req *http.Request) {
	p := session.FromContext(req.Context())
	if p == nil {
		http.Error(res, "no session", http.StatusInternalServerError)
		return
	}
	identity := p.FetchIdentity(req.Context())
	if identity == nil {
		apierror.WriteMessage(res, http.StatusBadGateway, "failed to load profile")
		return
	}
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(SessionState{
		Authenticated: true,
		Role:          p.Session().Role,
		Identity:      identity,
	}); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}
