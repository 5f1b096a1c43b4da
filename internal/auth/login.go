package auth

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/guard"
	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/session"
)

// ErrNoRole is reported when the backend accepted the user's credentials but issued a
// token that carries no recognized role
var ErrNoRole = errors.New("your account does not have access to the dashboard")

func (s *Server) handleLoginForm(res http.ResponseWriter, req *http.Request) {
	from := req.URL.Query().Get("from")
	s.renderForm(res, http.StatusOK, from, "")
}

func (s *Server) handleLogin(res http.ResponseWriter, req *http.Request) {
	p := session.FromContext(req.Context())
	if p == nil {
		http.Error(res, "no session", http.StatusInternalServerError)
		return
	}

	creds, from, err := parseCredentials(req)
	if err != nil {
		s.fail(res, req, http.StatusBadRequest, from, err.Error())
		return
	}

	tokens, err := s.client.Login(req.Context(), creds)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrRejected) || errors.Is(err, backend.ErrForbidden) {
			s.fail(res, req, http.StatusUnauthorized, from, backend.Message(err))
			return
		}
		apierror.Write(res, req, err)
		return
	}

	role, err := roles.FromAccessToken(tokens.AccessToken)
	if err != nil {
		s.logger.Warn("failed to decode access token issued at login", "error", err)
	}

	// The token is kept even when it carries no usable role, but without a role every
	// guarded route still rejects the session
	if err := p.Login(req.Context(), *tokens, role); err != nil {
		s.logger.Error("failed to store session", "session", p.ID(), "error", err)
		http.Error(res, "failed to store session", http.StatusInternalServerError)
		return
	}
	if role == roles.None {
		s.fail(res, req, http.StatusForbidden, from, ErrNoRole.Error())
		return
	}

	remembered := guard.TakeRememberedPath(res, req)
	if remembered == "" && guard.SafePath(from) {
		remembered = from
	}
	redirect := destination(role, remembered)
	if guard.WantsJSON(req) {
		res.Header().Set("content-type", "application/json")
		json.NewEncoder(res).Encode(SessionState{
			Authenticated: true,
			Role:          role,
			Redirect:      redirect,
		})
		return
	}
	http.Redirect(res, req, redirect, http.StatusSeeOther)
}

func (s *Server) handleLogout(res http.ResponseWriter, req *http.Request) {
	if p := session.FromContext(req.Context()); p != nil {
		if err := p.Logout(req.Context()); err != nil {
			s.logger.Error("failed to log out", "session", p.ID(), "error", err)
			http.Error(res, "failed to log out", http.StatusInternalServerError)
			return
		}
	}
	if guard.WantsJSON(req) {
		res.Header().Set("content-type", "application/json")
		json.NewEncoder(res).Encode(SessionState{Redirect: guard.LoginURL("")})
		return
	}
	http.Redirect(res, req, guard.LoginURL(""), http.StatusSeeOther)
}

// fail reports a failed login: JSON clients get a SessionState carrying the error,
// and browsers get the login form again with the error displayed
func (s *Server) fail(res http.ResponseWriter, req *http.Request, status int, from string, message string) {
	if guard.WantsJSON(req) {
		res.Header().Set("content-type", "application/json")
		res.WriteHeader(status)
		json.NewEncoder(res).Encode(SessionState{Error: message})
		return
	}
	s.renderForm(res, status, from, message)
}

func (s *Server) renderForm(res http.ResponseWriter, status int, from string, message string) {
	if !guard.SafePath(from) {
		from = ""
	}
	res.Header().Set("content-type", "text/html; charset=utf-8")
	res.WriteHeader(status)
	if err := loginTemplate.Execute(res, loginForm{From: from, Error: message}); err != nil {
		s.logger.Error("failed to render login form", "error", err)
	}
}

// destination picks where a freshly logged-in caller goes: back to the path they were
// originally after, if their role can access it, or else their role's landing page
func destination(role roles.Role, remembered string) string {
	if remembered == "" {
		return roles.LandingPath(role)
	}
	if strings.HasPrefix(remembered, "/admin") && role != roles.Admin {
		return roles.LandingPath(role)
	}
	if strings.HasPrefix(remembered, "/user") && role != roles.User {
		return roles.LandingPath(role)
	}
	return remembered
}

func parseCredentials(req *http.Request) (backend.Credentials, string, error) {
	var creds backend.Credentials
	from := req.URL.Query().Get("from")
	if strings.HasPrefix(req.Header.Get("content-type"), "application/json") {
		var body struct {
			backend.Credentials
			From string `json:"from"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return creds, from, errors.New("request body must be valid JSON")
		}
		creds = body.Credentials
		if body.From != "" {
			from = body.From
		}
	} else {
		if err := req.ParseForm(); err != nil {
			return creds, from, errors.New("invalid form submission")
		}
		creds.Email = req.PostForm.Get("email")
		creds.Password = req.PostForm.Get("password")
		if v := req.PostForm.Get("from"); v != "" {
			from = v
		}
	}
	if creds.Email == "" || creds.Password == "" {
		return creds, from, errors.New("email and password are required")
	}
	return creds, from, nil
}

type loginForm struct {
	From  string
	Error string
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Log in</title></head>
<body>
<h1>Log in</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="POST" action="/login">
  <input type="hidden" name="from" value="{{.From}}">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Log in</button>
</form>
</body>
</html>
`))
