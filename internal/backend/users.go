package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns a page of users for moderation
func (c *Client) ListUsers(ctx context.Context, token string, params ListParams) (*Page[UserSummary], error) {
	var page Page[UserSummary]
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/users",
		query:  params.values(),
		token:  token,
	}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// BanUser prevents a user from logging in
func (c *Client) BanUser(ctx context.Context, token, userId string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/users/" + url.PathEscape(userId) + "/ban",
		token:  token,
	}, nil)
}

// UnbanUser lifts a ban
func (c *Client) UnbanUser(ctx context.Context, token, userId string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/users/" + url.PathEscape(userId) + "/unban",
		token:  token,
	}, nil)
}
