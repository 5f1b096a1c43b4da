package guard

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/fitplate/dashboard"
)

// RedirectCookieName is the session-scoped cookie that remembers where a visitor was
// headed when they were sent to log in
const RedirectCookieName = "dashboard_redirect"

// SafePath reports whether p is an absolute path on this site, and therefore safe to
// redirect to
func SafePath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// RememberPath records the requested path so that the visitor can be returned to it
// after logging in. The cookie carries no expiry, so it's discarded when the browser
// session ends.
func RememberPath(res http.ResponseWriter, p string) {
	if !SafePath(p) {
		return
	}
	http.SetCookie(res, &http.Cookie{
		Name:     RedirectCookieName,
		Value:    url.QueryEscape(p),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeRememberedPath returns the path recorded by RememberPath, if any, and clears it
func TakeRememberedPath(res http.ResponseWriter, req *http.Request) string {
	cookie, err := req.Cookie(RedirectCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(res, &http.Cookie{
		Name:     RedirectCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	p, err := url.QueryUnescape(cookie.Value)
	if err != nil || !SafePath(p) {
		return ""
	}
	return p
}

// WantsJSON reports whether the client asked for a JSON response rather than a page
func WantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("accept"), "application/json")
}

// LoginURL returns the login page URL, carrying 'from' if it's a safe path
func LoginURL(from string) string {
	return withFrom(dashboard.LoginPath, from)
}

// ForbiddenURL returns the forbidden view URL, carrying 'from' if it's a safe path
func ForbiddenURL(from string) string {
	return withFrom(dashboard.ForbiddenPath, from)
}

// RedirectToLogin remembers the requested path and sends the client to log in. JSON
// clients get a 401 describing where to go instead of a redirect.
func RedirectToLogin(res http.ResponseWriter, req *http.Request) {
	from := req.URL.RequestURI()
	RememberPath(res, from)
	redirect(res, req, LoginURL(from), http.StatusUnauthorized, "authentication is required")
}

// RedirectToForbidden sends the client to the forbidden view, carrying the requested
// path. JSON clients get a 403 describing where to go instead of a redirect.
func RedirectToForbidden(res http.ResponseWriter, req *http.Request) {
	redirect(res, req, ForbiddenURL(req.URL.RequestURI()), http.StatusForbidden, "you do not have access to this page")
}

type redirectResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

func redirect(res http.ResponseWriter, req *http.Request, target string, status int, message string) {
	if WantsJSON(req) {
		res.Header().Set("content-type", "application/json")
		res.WriteHeader(status)
		json.NewEncoder(res).Encode(redirectResponse{Error: message, Redirect: target})
		return
	}
	http.Redirect(res, req, target, http.StatusSeeOther)
}

func withFrom(base string, from string) string {
	if !SafePath(from) {
		return base
	}
	return base + "?" + url.Values{"from": {from}}.Encode()
}
