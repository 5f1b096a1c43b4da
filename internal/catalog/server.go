// Package catalog serves the admin dashboard's catalog pages: allergens, foods,
// recipes and workouts. Items are passed through to and from the backend as raw JSON,
// and every change is announced to connected admins over SSE.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/search"
	"github.com/fitplate/dashboard/internal/sse"
)

// Backend represents the subset of the backend API used to manage catalogs
type Backend interface {
	ListCatalog(ctx context.Context, token string, kind backend.Kind, params backend.ListParams) (*backend.Page[json.RawMessage], error)
	GetCatalogItem(ctx context.Context, token string, kind backend.Kind, id string) (json.RawMessage, error)
	CreateCatalogItem(ctx context.Context, token string, kind backend.Kind, item json.RawMessage) (json.RawMessage, error)
	UpdateCatalogItem(ctx context.Context, token string, kind backend.Kind, id string, item json.RawMessage) (json.RawMessage, error)
	DeleteCatalogItem(ctx context.Context, token string, kind backend.Kind, id string) error
}

type Server struct {
	client    Backend
	debouncer *search.Debouncer
	changes   chan Change
	events    *sse.Handler[Change]
	logger    *slog.Logger
}

// NewServer initializes a catalog server. Change notifications are fanned out to
// connected admins until ctx is canceled.
func NewServer(ctx context.Context, client Backend, debouncer *search.Debouncer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	changes := make(chan Change, 32)
	return &Server{
		client:    client,
		debouncer: debouncer,
		changes:   changes,
		events:    sse.NewHandler[Change](ctx, changes, logger),
		logger:    logger,
	}
}

// RegisterRoutes adds the catalog routes to r, which is expected to be mounted at
// /admin behind a guard that only admits admins
func (s *Server) RegisterRoutes(r *mux.Router) {
	// Change notifications, so that open catalog pages can refresh when another admin
	// edits the same catalog
	r.Path("/events").Methods("GET").Handler(s.events)

	// CRUD endpoints for each catalog kind
	kind := "/{kind:" + kindPattern() + "}"
	r.Path(kind).Methods("GET").HandlerFunc(s.handleList)
	r.Path(kind).Methods("POST").HandlerFunc(s.handleCreate)
	r.Path(kind + "/{id}").Methods("GET").HandlerFunc(s.handleGet)
	r.Path(kind + "/{id}").Methods("PUT").HandlerFunc(s.handleUpdate)
	r.Path(kind + "/{id}").Methods("DELETE").HandlerFunc(s.handleDelete)
}

func kindPattern() string {
	pattern := ""
	for i, k := range backend.Kinds {
		if i > 0 {
			pattern += "|"
		}
		pattern += string(k)
	}
	return pattern
}
