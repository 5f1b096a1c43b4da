package backend

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return nil, err
	}
	var tokens TokenPair
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: "application/json",
	}, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Me returns the identity of the user who owns the access token
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	var identity Identity
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/me",
		token:  token,
	}, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
