package backend

import (
	"context"
	"net/http"
	"net/url"
)

// GenerateMealPlan asks the backend to generate a meal plan for an assessment,
// covering the given period (e.g. 'WEEK'). Generation is slow, so this call uses the
// long timeout.
func (c *Client) GenerateMealPlan(ctx context.Context, token, assessmentId, period string) (*MealPlanSummary, error) {
	query := url.Values{}
	query.Set("assessmentId", assessmentId)
	query.Set("period", period)

	var summary MealPlanSummary
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/meal-plans/generate",
		query:  query,
		token:  token,
		long:   true,
	}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetMealPlan returns the full detail of a generated meal plan
func (c *Client) GetMealPlan(ctx context.Context, token, id string) (*MealPlan, error) {
	var plan MealPlan
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/meal-plans/ai/" + url.PathEscape(id),
		token:  token,
	}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CurrentMealPlan returns the user's active meal plan, or ErrNotFound if the user
// has not generated one yet
func (c *Client) CurrentMealPlan(ctx context.Context, token string) (*MealPlan, error) {
	var plan MealPlan
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/meal-plans/current",
		token:  token,
	}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
