package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/search"
	"github.com/fitplate/dashboard/internal/session"
)

// maxItemSize bounds the size of a catalog item submitted for create or update
const maxItemSize = 1 << 20

func (s *Server) handleList(res http.ResponseWriter, req *http.Request) {
	kind := backend.Kind(mux.Vars(req)["kind"])
	params, err := backend.ParseListParams(req.URL.Query())
	if err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, err.Error())
		return
	}

	token := session.AccessToken(req.Context())
	list := func(ctx context.Context) (*backend.Page[json.RawMessage], error) {
		return s.client.ListCatalog(ctx, token, kind, params)
	}

	// Searches are typed one keystroke at a time, so they're debounced per session and
	// catalog: only the latest search is sent to the backend, and a stale result is
	// never returned
	var page *backend.Page[json.RawMessage]
	if params.Search != "" {
		page, err = search.Do(req.Context(), s.debouncer, searchKey(req, kind), list)
	} else {
		page, err = list(req.Context())
	}
	if errors.Is(err, search.ErrSuperseded) || errors.Is(err, context.Canceled) {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, page)
}

func (s *Server) handleGet(res http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	item, err := s.client.GetCatalogItem(req.Context(), session.AccessToken(req.Context()), backend.Kind(vars["kind"]), vars["id"])
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, item)
}

func (s *Server) handleCreate(res http.ResponseWriter, req *http.Request) {
	kind := backend.Kind(mux.Vars(req)["kind"])
	item, err := readItem(req)
	if err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.client.CreateCatalogItem(req.Context(), session.AccessToken(req.Context()), kind, item)
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	s.publish(Change{Kind: kind, Id: itemId(created), Action: ActionCreated})
	writeJSON(res, http.StatusCreated, created)
}

func (s *Server) handleUpdate(res http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	kind := backend.Kind(vars["kind"])
	item, err := readItem(req)
	if err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.client.UpdateCatalogItem(req.Context(), session.AccessToken(req.Context()), kind, vars["id"], item)
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	s.publish(Change{Kind: kind, Id: vars["id"], Action: ActionUpdated})
	writeJSON(res, http.StatusOK, updated)
}

func (s *Server) handleDelete(res http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	kind := backend.Kind(vars["kind"])
	if err := s.client.DeleteCatalogItem(req.Context(), session.AccessToken(req.Context()), kind, vars["id"]); err != nil {
		apierror.Write(res, req, err)
		return
	}
	s.publish(Change{Kind: kind, Id: vars["id"], Action: ActionDeleted})
	res.WriteHeader(http.StatusNoContent)
}

// publish announces a change without blocking the request if the bus is backed up
func (s *Server) publish(c Change) {
	select {
	case s.changes <- c:
	default:
		s.logger.Warn("dropped catalog change notification", "kind", c.Kind, "id", c.Id, "action", c.Action)
	}
}

func searchKey(req *http.Request, kind backend.Kind) string {
	if p := session.FromContext(req.Context()); p != nil {
		return p.ID().String() + ":" + string(kind)
	}
	return string(kind)
}

func readItem(req *http.Request) (json.RawMessage, error) {
	b, err := io.ReadAll(io.LimitReader(req.Body, maxItemSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(b) > maxItemSize {
		return nil, errors.New("catalog item is too large")
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, errors.New("catalog item must be a JSON object")
	}
	return json.RawMessage(b), nil
}

func itemId(item json.RawMessage) string {
	var v struct {
		Id any `json:"id"`
	}
	if err := json.Unmarshal(item, &v); err != nil || v.Id == nil {
		return ""
	}
	return fmt.Sprint(v.Id)
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(v)
}
