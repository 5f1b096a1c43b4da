package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RequestIdHeader carries the ID assigned to each request, for correlating logs
const RequestIdHeader = "X-Request-Id"

// recoverPanics turns a panic in any handler into a generic 500 response
func recoverPanics(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error("recovered from panic", "path", req.URL.Path, "panic", v)
					http.Error(res, "Something went wrong. Please try again later.", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(res, req)
		})
	}
}

// logRequests assigns each request an ID and logs it once it completes
func logRequests(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			requestId := req.Header.Get(RequestIdHeader)
			if _, err := uuid.Parse(requestId); err != nil {
				requestId = uuid.NewString()
			}
			res.Header().Set(RequestIdHeader, requestId)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: res, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			logger.Info("handled request",
				"id", requestId,
				"method", req.Method,
				"path", req.URL.Path,
				"status", rec.status,
				"dur", time.Since(start),
			)
		})
	}
}

// statusRecorder captures the status code written by a handler. It passes Flush
// through so that event streams keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
