package backend

import (
	"context"
	"net/http"
	"net/url"
)

// CreateSubscriptionPayment starts a payment for a subscription plan. The returned
// payment is PENDING, and carries the URL of the hosted checkout page.
func (c *Client) CreateSubscriptionPayment(ctx context.Context, token, plan string) (*Payment, error) {
	body, err := jsonBody(struct {
		Plan string `json:"plan"`
	}{plan})
	if err != nil {
		return nil, err
	}
	var payment Payment
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/payments/subscriptions",
		token:       token,
		body:        body,
		contentType: "application/json",
	}, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment returns the current state of a payment
func (c *Client) GetPayment(ctx context.Context, token, id string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/payments/" + url.PathEscape(id),
		token:  token,
	}, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
