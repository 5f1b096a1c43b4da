package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultCookieName is the name of the cookie that carries the session ID
const DefaultCookieName = "dashboard_session"

// DefaultCookieMaxAge keeps the session cookie across browser restarts
const DefaultCookieMaxAge = 30 * 24 * time.Hour

// CookieOptions controls how the session cookie is issued
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type contextKey string

const providerContextKey contextKey = "session-provider"

// WithProvider returns a copy of ctx carrying the given Provider
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerContextKey, p)
}

// FromContext returns the Provider attached to ctx by Middleware, or nil
func FromContext(ctx context.Context) *Provider {
	p, ok := ctx.Value(providerContextKey).(*Provider)
	if !ok {
		return nil
	}
	return p
}

// AccessToken returns the access token of the session attached to ctx, or an empty
// string if there is none
func AccessToken(ctx context.Context) string {
	if p := FromContext(ctx); p != nil {
		return p.Session().AccessToken
	}
	return ""
}

// Middleware ensures that every request carries a session ID cookie, loads the
// corresponding session from the store, and attaches a Provider for it to the
// request context
func Middleware(store Store, fetcher IdentityFetcher, opts CookieOptions, logger *slog.Logger) mux.MiddlewareFunc {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultCookieMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			id, ok := parseCookie(req, opts.Name)
			if !ok {
				id = uuid.New()
				http.SetCookie(res, &http.Cookie{
					Name:     opts.Name,
					Value:    id.String(),
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			p, err := Open(req.Context(), id, store, fetcher, logger)
			if err != nil {
				logger.Error("failed to load session", "session", id, "error", err)
				http.Error(res, "failed to load session", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(res, req.WithContext(WithProvider(req.Context(), p)))
		})
	}
}

func parseCookie(req *http.Request, name string) (uuid.UUID, bool) {
	cookie, err := req.Cookie(name)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
