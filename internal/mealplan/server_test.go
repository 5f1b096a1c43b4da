package mealplan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/backend/backendtest"
	"github.com/fitplate/dashboard/internal/roles"
	"github.com/fitplate/dashboard/internal/session"
)

func newRouter(t *testing.T, opts ...backend.Option) (*mux.Router, *backendtest.Backend, *session.Provider) {
	fake := backendtest.New().
		AddAccount("uma@fitplate.app", "hunter3", jwt.MapClaims{"role": "USER"}, backend.Identity{Id: "u-2"})
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	id := uuid.New()
	require.NoError(t, store.Put(context.Background(), id, session.Session{
		AccessToken: fake.IssueToken("uma@fitplate.app"),
		Role:        roles.User,
	}))
	p, err := session.Open(context.Background(), id, store, nil, nil)
	require.NoError(t, err)

	s := NewServer(backend.NewClient(srv.URL, opts...), nil)
	r := mux.NewRouter()
	s.RegisterRoutes(r.PathPrefix("/user").Subrouter())
	return r, fake, p
}

func do(r *mux.Router, p *session.Provider, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(session.WithProvider(req.Context(), p))
	req.Header.Set("accept", "application/json")
	if contentType != "" {
		req.Header.Set("content-type", contentType)
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func Test_Server_plan_lifecycle(t *testing.T) {
	r, _, p := newRouter(t)

	// Before any plan is generated, the current plan page shows an empty state
	res := do(r, p, http.MethodGet, "/user/current-plan", "", "")
	assert.Equal(t, http.StatusOK, res.Code)
	var current CurrentPlan
	require.NoError(t, json.NewDecoder(res.Body).Decode(&current))
	assert.Nil(t, current.Plan)
	assert.NotEmpty(t, current.Message)

	res = do(r, p, http.MethodPost, "/user/meal-plans/generate", "application/json", `{"assessmentId":"a-1","period":"week"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var summary backend.MealPlanSummary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&summary))
	assert.Equal(t, "a-1", summary.AssessmentId)
	assert.Equal(t, "WEEK", summary.Period)

	res = do(r, p, http.MethodGet, "/user/meal-plans/"+summary.Id, "", "")
	assert.Equal(t, http.StatusOK, res.Code)
	var plan backend.MealPlan
	require.NoError(t, json.NewDecoder(res.Body).Decode(&plan))
	assert.Equal(t, summary.Id, plan.Id)
	assert.NotEmpty(t, plan.Days)

	res = do(r, p, http.MethodGet, "/user/current-plan", "", "")
	assert.Equal(t, http.StatusOK, res.Code)
	current = CurrentPlan{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&current))
	if assert.NotNil(t, current.Plan) {
		assert.Equal(t, summary.Id, current.Plan.Id)
	}
}

func Test_Server_handleGenerate(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"json body", "application/json", `{"assessmentId":"a-1","period":"MONTH"}`, http.StatusCreated},
		{"form body", "application/x-www-form-urlencoded", "assessmentId=a-1&period=WEEK", http.StatusCreated},
		{"missing period", "application/json", `{"assessmentId":"a-1"}`, http.StatusBadRequest},
		{"malformed json", "application/json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, p := newRouter(t)
			res := do(r, p, http.MethodPost, "/user/meal-plans/generate", tt.contentType, tt.body)
			assert.Equal(t, tt.wantStatus, res.Code)
		})
	}
}

func Test_Server_handleGenerate_timeout(t *testing.T) {
	r, fake, p := newRouter(t, backend.WithLongTimeout(10*time.Millisecond))
	fake.Delay("/meal-plans/generate", time.Second)

	res := do(r, p, http.MethodPost, "/user/meal-plans/generate", "application/json", `{"assessmentId":"a-1","period":"MONTH"}`)
	assert.Equal(t, http.StatusGatewayTimeout, res.Code)
	var body apierror.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, TimeoutSuggestion, body.Suggestion)
}

func Test_Server_handleGet_not_found(t *testing.T) {
	r, _, p := newRouter(t)
	res := do(r, p, http.MethodGet, "/user/meal-plans/nope", "", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "Meal plan not found")
}
