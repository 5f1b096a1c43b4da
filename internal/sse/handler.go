package sse

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// KeepaliveInterval is how often an idle connection receives a keepalive comment
const KeepaliveInterval = 30 * time.Second

// Handler is an HTTP handler that serves a stream of data using Server-Sent Events
type Handler[T any] struct {
	ctx    context.Context
	b      *bus[T]
	logger *slog.Logger

	OnConnectEventFunc func() T
}

// NewHandler initializes an SSE handler that will read messages from the given channel
// and fan them out to all extant HTTP connections
func NewHandler[T any](ctx context.Context, ch <-chan T, logger *slog.Logger) *Handler[T] {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler[T]{
		ctx:    ctx,
		b:      newBus[T](),
		logger: logger,
	}
	go func() {
		done := false
		for !done {
			select {
			case <-ctx.Done():
				done = true
				h.b.reset()
			case message := <-ch:
				if dropped := h.b.publish(message); dropped > 0 {
					h.logger.Warn("skipped slow SSE connections", "count", dropped)
				}
			}
		}
	}()
	return h
}

// ServeHTTP responds by opening a long-lived HTTP connection to which events will be
// written as the handler receives them, formatted as text/event-stream messages with
// 'data' consisting of a JSON-encoded message payload
func (h *Handler[T]) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	stream, err := Open(res, req)
	if err != nil {
		return
	}

	// If configured to send an initial value immediately upon connect, resolve that
	// value and send it: otherwise send an initial keepalive message so that proxies
	// start relaying the stream right away
	if h.OnConnectEventFunc != nil {
		if err := stream.Send(h.OnConnectEventFunc()); err != nil {
			h.logger.Error("failed to send initial SSE message", "error", err)
		}
	} else {
		stream.Keepalive()
	}

	// Open a channel to receive message structs (i.e. any JSON-serializable value that
	// we want to send over our stream) as they're emitted
	ch := make(chan T, 32)
	h.b.subscribe(ch)

	// Send all incoming messages to the client for as long as the connection is open
	h.logger.Debug("opened SSE connection", "remote", req.RemoteAddr)
	for {
		select {
		case <-time.After(KeepaliveInterval):
			stream.Keepalive()
		case message := <-ch:
			if err := stream.Send(message); err != nil {
				h.logger.Error("failed to send SSE message", "error", err)
			}
		case <-h.ctx.Done():
			h.logger.Debug("server is shutting down; abandoning SSE connection", "remote", req.RemoteAddr)
			h.b.unsubscribe(ch)
			return
		case <-req.Context().Done():
			h.logger.Debug("SSE connection closed", "remote", req.RemoteAddr)
			h.b.unsubscribe(ch)
			return
		}
	}
}
