package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fitplate/dashboard/internal/backend"
)

func Test_Poll(t *testing.T) {
	tests := []struct {
		name       string
		results    []result
		wantEvents []StatusEvent
		wantErr    error
	}{
		{
			"pending until paid",
			[]result{
				{backend.PaymentStatusPending, nil},
				{backend.PaymentStatusPending, nil},
				{backend.PaymentStatusPaid, nil},
			},
			[]StatusEvent{
				{PaymentId: "p-1", Status: backend.PaymentStatusPending},
				{PaymentId: "p-1", Status: backend.PaymentStatusPending},
				{PaymentId: "p-1", Status: backend.PaymentStatusPaid, Done: true},
			},
			nil,
		},
		{
			"already failed",
			[]result{
				{backend.PaymentStatusFailed, nil},
			},
			[]StatusEvent{
				{PaymentId: "p-1", Status: backend.PaymentStatusFailed, Done: true},
			},
			nil,
		},
		{
			"transient errors are reported and polling continues",
			[]result{
				{"", fmt.Errorf("connection reset")},
				{backend.PaymentStatusExpired, nil},
			},
			[]StatusEvent{
				{PaymentId: "p-1", Error: "connection reset"},
				{PaymentId: "p-1", Status: backend.PaymentStatusExpired, Done: true},
			},
			nil,
		},
		{
			"missing payment ends polling",
			[]result{
				{"", backend.NewError(backend.ErrNotFound, 404, "Payment not found")},
			},
			[]StatusEvent{
				{PaymentId: "p-1", Done: true, Error: "Payment not found"},
			},
			backend.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			fetch := func(ctx context.Context) (*backend.Payment, error) {
				r := tt.results[calls]
				calls++
				if r.err != nil {
					return nil, r.err
				}
				return &backend.Payment{Id: "p-1", Status: r.status}, nil
			}
			var events []StatusEvent
			err := Poll(context.Background(), "p-1", time.Millisecond, fetch, func(ev StatusEvent) {
				events = append(events, ev)
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantEvents, events)
			assert.Equal(t, len(tt.results), calls)
		})
	}
}

func Test_Poll_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(ctx context.Context) (*backend.Payment, error) {
		calls++
		cancel()
		return &backend.Payment{Status: backend.PaymentStatusPending}, nil
	}
	err := Poll(ctx, "p-1", time.Hour, fetch, func(StatusEvent) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

type result struct {
	status backend.PaymentStatus
	err    error
}
