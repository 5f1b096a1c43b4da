// Package assessment serves the user dashboard's body image upload and analysis pages
package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/session"
	"github.com/fitplate/dashboard/internal/storage"
)

// MaxImageSize bounds the size of an uploaded body image
const MaxImageSize = 10 << 20

// ImageFieldName is the multipart form field that carries the image
const ImageFieldName = "image"

// TimeoutSuggestion is shown when analysis outlasts the long backend timeout
const TimeoutSuggestion = "analyzing this image took too long; try a smaller image"

var supportedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Backend represents the subset of the backend API used for body images
type Backend interface {
	UploadBodyImage(ctx context.Context, token, assessmentId, filename, contentType string, data io.Reader) (*backend.BodyAnalysis, error)
	GetBodyAnalysis(ctx context.Context, token, assessmentId string) (*backend.BodyAnalysis, error)
}

// Analysis is the response for the analysis page. An assessment whose image has not
// been analyzed yet gets an empty state rather than an error.
type Analysis struct {
	Analysis *backend.BodyAnalysis `json:"analysis"`
	Message  string                `json:"message,omitempty"`
}

type Server struct {
	client  Backend
	archive storage.ArchiveClient
	logger  *slog.Logger
}

// NewServer initializes an assessment server. If archive is nil, uploaded images are
// forwarded to the backend without being archived.
func NewServer(client Backend, archive storage.ArchiveClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		client:  client,
		archive: archive,
		logger:  logger,
	}
}

// RegisterRoutes adds the assessment routes to r, which is expected to be mounted at
// /user behind a guard that only admits users
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/assessments/{id}/body-image").Methods("POST").HandlerFunc(s.handleUpload)
	r.Path("/assessments/{id}/body-image").Methods("GET").HandlerFunc(s.handleGet)
}

func (s *Server) handleUpload(res http.ResponseWriter, req *http.Request) {
	assessmentId := mux.Vars(req)["id"]

	// Read the image into memory: it's sent to the backend and to the archive at once
	req.Body = http.MaxBytesReader(res, req.Body, MaxImageSize+(1<<20))
	if err := req.ParseMultipartForm(MaxImageSize); err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, "request must be a multipart form no larger than 10 MB")
		return
	}
	file, header, err := req.FormFile(ImageFieldName)
	if err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, "an image must be supplied in the 'image' field")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		apierror.WriteMessage(res, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		apierror.WriteMessage(res, http.StatusBadRequest, "image must be between 1 byte and 10 MB")
		return
	}
	contentType := header.Header.Get("content-type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if _, ok := supportedContentTypes[contentType]; !ok {
		apierror.WriteMessage(res, http.StatusUnsupportedMediaType, "image must be a JPEG, PNG or WebP file")
		return
	}

	// Forward the image for analysis and archive it concurrently. A failure to archive
	// is logged but doesn't fail the upload.
	token := session.AccessToken(req.Context())
	var analysis *backend.BodyAnalysis
	var wg errgroup.Group
	wg.Go(func() error {
		result, err := s.client.UploadBodyImage(req.Context(), token, assessmentId, header.Filename, contentType, bytes.NewReader(data))
		analysis = result
		return err
	})
	if s.archive != nil {
		wg.Go(func() error {
			key := storage.FormatBodyImageKey(assessmentId, contentType)
			if _, err := s.archive.Upload(req.Context(), key, contentType, bytes.NewReader(data)); err != nil {
				s.logger.Error("failed to archive body image", "assessment", assessmentId, "key", key, "error", err)
				return nil
			}
			s.logger.Info("archived body image", "assessment", assessmentId, "key", key)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		apierror.Write(res, req, err, apierror.WithSuggestion(TimeoutSuggestion))
		return
	}
	writeJSON(res, http.StatusCreated, analysis)
}

func (s *Server) handleGet(res http.ResponseWriter, req *http.Request) {
	analysis, err := s.client.GetBodyAnalysis(req.Context(), session.AccessToken(req.Context()), mux.Vars(req)["id"])
	if errors.Is(err, backend.ErrNotFound) {
		writeJSON(res, http.StatusOK, Analysis{Message: "This assessment has no body image analysis yet."})
		return
	}
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, Analysis{Analysis: analysis})
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(v)
}
