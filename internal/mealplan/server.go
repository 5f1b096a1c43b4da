// Package mealplan serves the user dashboard's meal plan pages
package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/apierror"
	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/session"
)

// TimeoutSuggestion is shown when plan generation outlasts the long backend timeout
const TimeoutSuggestion = "generating this plan took too long; try a shorter period"

// Backend represents the subset of the backend API used for meal plans
type Backend interface {
	GenerateMealPlan(ctx context.Context, token, assessmentId, period string) (*backend.MealPlanSummary, error)
	GetMealPlan(ctx context.Context, token, id string) (*backend.MealPlan, error)
	CurrentMealPlan(ctx context.Context, token string) (*backend.MealPlan, error)
}

// CurrentPlan is the response for the current-plan page. A user who has not generated a
// plan yet gets an empty state rather than an error.
type CurrentPlan struct {
	Plan    *backend.MealPlan `json:"plan"`
	Message string            `json:"message,omitempty"`
}

// GenerateRequest asks for a new meal plan
type GenerateRequest struct {
	AssessmentId string `json:"assessmentId"`
	Period       string `json:"period"`
}

type Server struct {
	client Backend
	logger *slog.Logger
}

func NewServer(client Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		client: client,
		logger: logger,
	}
}

// RegisterRoutes adds the meal plan routes to r, which is expected to be mounted at
// /user behind a guard that only admits users
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/current-plan").Methods("GET").HandlerFunc(s.handleGetCurrent)
	r.Path("/meal-plans/generate").Methods("POST").HandlerFunc(s.handleGenerate)
	r.Path("/meal-plans/{id}").Methods("GET").HandlerFunc(s.handleGet)
}

func (s *Server) handleGetCurrent(res http.ResponseWriter, req *http.Request) {
	plan, err := s.client.CurrentMealPlan(req.Context(), session.AccessToken(req.Context()))
	if errors.Is(err, backend.ErrNotFound) {
		writeJSON(res, http.StatusOK, CurrentPlan{Message: "You haven't generated a meal plan yet."})
		return
	}
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, CurrentPlan{Plan: plan})
}

func (s *Server) handleGenerate(res http.ResponseWriter, req *http.Request) {
	var body GenerateRequest
	if strings.HasPrefix(req.Header.Get("content-type"), "application/json") {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			apierror.WriteMessage(res, http.StatusBadRequest, "request body must be valid JSON")
			return
		}
	} else {
		body.AssessmentId = req.FormValue("assessmentId")
		body.Period = req.FormValue("period")
	}
	body.Period = strings.ToUpper(strings.TrimSpace(body.Period))
	if body.AssessmentId == "" || body.Period == "" {
		apierror.WriteMessage(res, http.StatusBadRequest, "assessmentId and period are required")
		return
	}

	summary, err := s.client.GenerateMealPlan(req.Context(), session.AccessToken(req.Context()), body.AssessmentId, body.Period)
	if err != nil {
		apierror.Write(res, req, err, apierror.WithSuggestion(TimeoutSuggestion))
		return
	}
	s.logger.Info("generated meal plan", "plan", summary.Id, "assessment", body.AssessmentId, "period", body.Period)
	writeJSON(res, http.StatusCreated, summary)
}

func (s *Server) handleGet(res http.ResponseWriter, req *http.Request) {
	plan, err := s.client.GetMealPlan(req.Context(), session.AccessToken(req.Context()), mux.Vars(req)["id"])
	if err != nil {
		apierror.Write(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, plan)
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(v)
}
