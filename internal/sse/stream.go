package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAcceptable is returned by Open when the client explicitly asked for a content
// type other than text/event-stream
var ErrNotAcceptable = errors.New("client does not accept text/event-stream")

// Stream writes events to a single open text/event-stream response
type Stream struct {
	res     http.ResponseWriter
	flusher http.Flusher
}

// Open validates the request's 'accept' header and, if acceptable, writes the
// response headers for a long-lived text/event-stream body. On failure, an error
// response has already been written.
func Open(res http.ResponseWriter, req *http.Request) (*Stream, error) {
	// If a content-type is explicitly requested, require that it's text/event-stream
	accept := req.Header.Get("accept")
	if accept != "" && accept != "*/*" && !strings.HasPrefix(accept, "text/event-stream") {
		message := fmt.Sprintf("content-type %s is not supported", accept)
		http.Error(res, message, http.StatusBadRequest)
		return nil, ErrNotAcceptable
	}
	flusher, ok := res.(http.Flusher)
	if !ok {
		http.Error(res, "streaming is not supported", http.StatusInternalServerError)
		return nil, errors.New("response writer does not support flushing")
	}

	// Keep the connection alive and open a text/event-stream response body
	res.Header().Set("content-type", "text/event-stream")
	res.Header().Set("cache-control", "no-cache")
	res.Header().Set("connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &Stream{res: res, flusher: flusher}, nil
}

// Send writes a message as an event whose 'data' is the JSON-encoded message
func (s *Stream) Send(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to serialize SSE message as JSON: %w", err)
	}
	if _, err := fmt.Fprintf(s.res, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Keepalive writes an empty comment line, which keeps proxies from closing an idle
// connection
func (s *Stream) Keepalive() {
	s.res.Write([]byte(":\n\n"))
	s.flusher.Flush()
}
