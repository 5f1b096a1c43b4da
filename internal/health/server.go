package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckTimeout bounds each dependency check
const CheckTimeout = 3 * time.Second

// Status reports whether the dashboard can serve requests
type Status struct {
	IsReady bool   `json:"isReady"`
	Message string `json:"message"`
}

// PingFunc verifies that a dependency is reachable
type PingFunc func(ctx context.Context) error

type Server struct {
	pingStore   PingFunc
	pingBackend PingFunc
}

func NewServer(pingStore PingFunc, pingBackend PingFunc) *Server {
	return &Server{
		pingStore:   pingStore,
		pingBackend: pingBackend,
	}
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	status := s.resolveStatus(req.Context())
	res.Header().Set("content-type", "application/json")
	if err := json.NewEncoder(res).Encode(status); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) resolveStatus(ctx context.Context) Status {
	if err := ping(ctx, s.pingStore); err != nil {
		return Status{
			IsReady: false,
			Message: fmt.Sprintf("The session store is unavailable, so nobody can log in. (Error: %s)", err),
		}
	}

	if err := ping(ctx, s.pingBackend); err != nil {
		return Status{
			IsReady: false,
			Message: fmt.Sprintf("Sessions are working, but the backend API is unreachable. (Error: %s)", err),
		}
	}

	return Status{
		IsReady: true,
		Message: "The session store and the backend API are both reachable. The dashboard is fully operational!",
	}
}

func ping(ctx context.Context, f PingFunc) error {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()
	return f(ctx)
}
