package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/fitplate/dashboard/internal/backend"
)

func Test_Server_handleList(t *testing.T) {
	client := &mockBackend{}
	s := NewServer(client, nil)
	r := mux.NewRouter()
	s.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/users?page=1&size=5&search=uma", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, backend.ListParams{Page: 1, Size: 5, Search: "uma"}, client.listParams)
	var page backend.Page[backend.UserSummary]
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&page))
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Uma User", page.Content[0].FullName)
}

func Test_Server_moderation(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBanned map[string]bool
	}{
		{
			"ban a user",
			"/users/u-2/ban",
			http.StatusNoContent,
			map[string]bool{"u-2": true},
		},
		{
			"unban a user",
			"/users/u-3/unban",
			http.StatusNoContent,
			map[string]bool{"u-3": false},
		},
		{
			"unknown user",
			"/users/u-404/ban",
			http.StatusNotFound,
			map[string]bool{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockBackend{banned: make(map[string]bool)}
			s := NewServer(client, nil)
			r := mux.NewRouter()
			s.RegisterRoutes(r)

			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			req.Header.Set("accept", "application/json")
			res := httptest.NewRecorder()
			r.ServeHTTP(res, req)

			assert.Equal(t, tt.wantStatus, res.Code)
			assert.Equal(t, tt.wantBanned, client.banned)
		})
	}
}

type mockBackend struct {
	listParams backend.ListParams
	banned     map[string]bool
}

func (m *mockBackend) ListUsers(ctx context.Context, token string, params backend.ListParams) (*backend.Page[backend.UserSummary], error) {
	m.listParams = params
	return &backend.Page[backend.UserSummary]{
		Content:       []backend.UserSummary{{Id: "u-2", FullName: "Uma User", Role: "USER"}},
		TotalElements: 1,
	}, nil
}

func (m *mockBackend) BanUser(ctx context.Context, token, userId string) error {
	return m.set(userId, true)
}

func (m *mockBackend) UnbanUser(ctx context.Context, token, userId string) error {
	return m.set(userId, false)
}

func (m *mockBackend) set(userId string, banned bool) error {
	if userId == "u-404" {
		return backend.NewError(backend.ErrNotFound, http.StatusNotFound, "User not found")
	}
	m.banned[userId] = banned
	return nil
}

var _ Backend = (*mockBackend)(nil)
