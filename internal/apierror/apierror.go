// Package apierror turns errors from the backend into dashboard responses, applying
// the same policy everywhere: a rejected token ends the session, a denial leads to the
// forbidden view, and everything else is reported to the user with a useful message.
package apierror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/guard"
	"github.com/fitplate/dashboard/internal/session"
)

// Response is the JSON body written for failed requests
type Response struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
	Redirect   string `json:"redirect,omitempty"`
}

// Option customizes how Write reports a timeout
type Option func(*Response)

// WithSuggestion replaces the hint shown to the user when a request timed out
func WithSuggestion(suggestion string) Option {
	return func(r *Response) { r.Suggestion = suggestion }
}

// DefaultTimeoutSuggestion is shown when a backend call timed out and the caller did
// not supply anything more specific
const DefaultTimeoutSuggestion = "the server took too long to respond; please try again"

// Write reports a failed backend call to the client:
//   - 401: the access token is discarded and the client is sent to log in
//   - 403: the client is sent to the forbidden view
//   - 404: 404 with the backend's message
//   - envelope rejection: 400 with the backend's message
//   - timeout: 504 with a suggestion
//   - anything else: 502
func Write(res http.ResponseWriter, req *http.Request, err error, opts ...Option) {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		if p := session.FromContext(req.Context()); p != nil {
			if invalidateErr := p.Invalidate(req.Context()); invalidateErr != nil {
				slog.Error("failed to invalidate session", "session", p.ID(), "error", invalidateErr)
			}
		}
		guard.RedirectToLogin(res, req)
	case errors.Is(err, backend.ErrForbidden):
		guard.RedirectToForbidden(res, req)
	case errors.Is(err, backend.ErrNotFound):
		write(res, http.StatusNotFound, Response{Error: backend.Message(err)}, nil)
	case errors.Is(err, backend.ErrRejected):
		write(res, http.StatusBadRequest, Response{Error: backend.Message(err)}, nil)
	case errors.Is(err, backend.ErrTimeout):
		write(res, http.StatusGatewayTimeout, Response{
			Error:      "request timed out",
			Suggestion: DefaultTimeoutSuggestion,
		}, opts)
	default:
		slog.Error("backend request failed", "path", req.URL.Path, "error", err)
		write(res, http.StatusBadGateway, Response{Error: "the server could not complete the request"}, nil)
	}
}

// WriteMessage writes a JSON error response with the given status and message
func WriteMessage(res http.ResponseWriter, status int, message string) {
	write(res, status, Response{Error: message}, nil)
}

func write(res http.ResponseWriter, status int, body Response, opts []Option) {
	for _, o := range opts {
		o(&body)
	}
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(body)
}
