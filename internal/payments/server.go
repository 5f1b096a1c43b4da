// Package payments lets users start a subscription payment and follow its status
// until the hosted checkout completes
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/guard"
	"github.com/fitplate/dashboard/internal/session"
	"github.com/fitplate/dashboard/internal/sse"
)

// Backend represents the subset of the backend API used for payments
type Backend interface {
	CreateSubscriptionPayment(ctx context.Context, token, plan string) (*backend.Payment, error)
	GetPayment(ctx context.Context, token, id string) (*backend.Payment, error)
}

// SubscribeRequest starts a payment for a subscription plan
type SubscribeRequest struct {
	Plan string `json:"plan"`
}

type Server struct {
	ctx      context.Context
	client   Backend
	interval time.Duration
	logger   *slog.Logger
}

// NewServer initializes a payments server. Open status streams are closed when ctx is
// canceled.
func NewServer(ctx context.Context, client Backend, interval time.Duration, logger *slog.Logger) *Server {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ctx:      ctx,
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// RegisterRoutes adds the payment routes to r, which is expected to be mounted at
// /user behind a guard that only admits users
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/subscriptions").Methods("POST").HandlerFunc(s.handleSubscribe)
	r.Path("/payments/{id}/status").Methods("GET").HandlerFunc(s.handleStatus)
}

func (s *Server) handleSubscribe(res http.ResponseWriter, req *http.Request) {
	var body SubscribeRequest
	if strings.HasPrefix(req.Header.Get("content-type"), "application/json") {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			apierror.WriteMessage(res, http.StatusBadRequest, "request body must be valid JSON")
			return
		}
	} else {
		body.Plan = req.FormValue("plan")
	}
	body.Plan = strings.ToUpper(strings.TrimSpace(body.Plan))
	if body.Plan == "" {
		apierror.WriteMessage(res, http.StatusBadRequest, "plan is required")
		return
	}

	payment, err := s.client.CreateSubscriptionPayment(req.Context(), session.AccessToken(req.Context()), body.Plan)
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	s.logger.Info("started subscription payment", "payment", payment.Id, "plan", payment.Plan)
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(http.StatusCreated)
	json.NewEncoder(res).Encode(payment)
}

func (s *Server) handleStatus(res http.ResponseWriter, req *http.Request) {
	paymentId := mux.Vars(req)["id"]
	stream, err := sse.Open(res, req)
	if err != nil {
		return
	}

	// A rejected token ends the session just as it would for any other request, but
	// since headers are already sent, the client is told where to go in the final event
	p := session.FromContext(req.Context())
	token := session.AccessToken(req.Context())

	// Polling stops when the client goes away or the server shuts down
	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	fetch := func(ctx context.Context) (*backend.Payment, error) {
		payment, err := s.client.GetPayment(ctx, token, paymentId)
		if errors.Is(err, backend.ErrUnauthorized) && p != nil {
			if invalidateErr := p.Invalidate(ctx); invalidateErr != nil {
				s.logger.Error("failed to invalidate session", "session", p.ID(), "error", invalidateErr)
			}
		}
		return payment, err
	}
	emit := func(ev StatusEvent) {
		if ev.Done && ev.Error != "" && p != nil && !p.Session().Authenticated() {
			ev.Redirect = guard.LoginURL("")
		}
		if err := stream.Send(ev); err != nil {
			s.logger.Warn("failed to send payment status", "payment", paymentId, "error", err)
		}
	}
	if err := Poll(ctx, paymentId, s.interval, fetch, emit); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Info("stopped polling payment status", "payment", paymentId, "error", err)
	}
}
