package payments

import (
	"context"
	"errors"
	"time"

	"github.com/fitplate/dashboard/internal/backend"
)

// DefaultPollInterval is how often the status of a pending payment is checked
const DefaultPollInterval = 3 * time.Second

// StatusEvent reports the status of a payment to the page that's waiting on it. Done
// is set on the last event of the stream.
type StatusEvent struct {
	PaymentId string                `json:"paymentId"`
	Status    backend.PaymentStatus `json:"status,omitempty"`
	Done      bool                  `json:"done"`
	Error     string                `json:"error,omitempty"`
	Redirect  string                `json:"redirect,omitempty"`
}

// FetchFunc returns the current state of the payment being polled
type FetchFunc func(ctx context.Context) (*backend.Payment, error)

// Poll checks the payment immediately and then once per interval, emitting an event
// for each check, until the payment reaches a terminal status, the payment can no
// longer be checked, or ctx is canceled. Transient failures are reported and polling
// continues. The error that ended polling, if any, is returned.
func Poll(ctx context.Context, paymentId string, interval time.Duration, fetch FetchFunc, emit func(StatusEvent)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		payment, err := fetch(ctx)
		switch {
		case err == nil:
			done := payment.Status.Terminal()
			emit(StatusEvent{PaymentId: paymentId, Status: payment.Status, Done: done})
			if done {
				return nil
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrForbidden), errors.Is(err, backend.ErrNotFound):
			emit(StatusEvent{PaymentId: paymentId, Done: true, Error: backend.Message(err)})
			return err
		default:
			emit(StatusEvent{PaymentId: paymentId, Error: backend.Message(err)})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
