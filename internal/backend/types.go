package backend

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Credentials are submitted to log a user in
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is issued by the backend on successful login
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Identity is the authenticated user's profile, as returned by /users/me
type Identity struct {
	Id             string         `json:"id"`
	FullName       string         `json:"fullName"`
	Email          string         `json:"email"`
	MembershipTier string         `json:"membershipTier"`
	Profile        *HealthProfile `json:"profile,omitempty"`
}

// HealthProfile is the optional health record nested in a user's Identity
type HealthProfile struct {
	HeightCm      float64  `json:"heightCm"`
	WeightKg      float64  `json:"weightKg"`
	Gender        string   `json:"gender"`
	DateOfBirth   string   `json:"dateOfBirth"`
	Goal          string   `json:"goal"`
	ActivityLevel string   `json:"activityLevel"`
	Allergies     []string `json:"allergies"`
}

// MealPlanSummary is returned when a meal plan has been generated
type MealPlanSummary struct {
	Id            string    `json:"id"`
	AssessmentId  string    `json:"assessmentId"`
	Period        string    `json:"period"`
	TotalCalories int       `json:"totalCalories"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MealPlan is the full detail of a generated meal plan
type MealPlan struct {
	MealPlanSummary
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	Days      []MealPlanDay `json:"days"`
}

// MealPlanDay lists the meals planned for one day
type MealPlanDay struct {
	Date  string `json:"date"`
	Meals []Meal `json:"meals"`
}

// Meal is a single planned meal
type Meal struct {
	Type     string `json:"type"`
	RecipeId string `json:"recipeId"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// BodyAnalysis is the backend's analysis of an uploaded body image
type BodyAnalysis struct {
	AssessmentId   string    `json:"assessmentId"`
	ImageUrl       string    `json:"imageUrl"`
	BodyFatPercent float64   `json:"bodyFatPercent"`
	BodyType       string    `json:"bodyType"`
	Summary        string    `json:"summary"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

// UserSummary is a row in the admin user list
type UserSummary struct {
	Id             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	MembershipTier string `json:"membershipTier"`
	Banned         bool   `json:"banned"`
}

// PaymentStatus is the lifecycle state of a subscription payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
)

// Terminal reports whether the payment will no longer change status
func (s PaymentStatus) Terminal() bool {
	return s != PaymentStatusPending && s != ""
}

// Payment is a subscription payment, paid through a hosted checkout page
type Payment struct {
	Id          string        `json:"id"`
	Plan        string        `json:"plan"`
	Amount      int64         `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	CheckoutUrl string        `json:"checkoutUrl"`
}

// ListParams controls pagination and filtering of list calls
type ListParams struct {
	Page   int
	Size   int
	Search string
}

// DefaultPageSize is used when a list request does not specify a page size
const DefaultPageSize = 10

// MaxPageSize caps the page size a caller can request
const MaxPageSize = 100

// ErrInvalidListParams is returned by ParseListParams for malformed pagination values
var ErrInvalidListParams = errors.New("invalid pagination parameters")

// ParseListParams reads 'page' (0-based), 'size' and 'search' from a query string
func ParseListParams(q url.Values) (ListParams, error) {
	params := ListParams{Size: DefaultPageSize, Search: strings.TrimSpace(q.Get("search"))}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return ListParams{}, fmt.Errorf("%w: page must be a non-negative integer", ErrInvalidListParams)
		}
		params.Page = page
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > MaxPageSize {
			return ListParams{}, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidListParams, MaxPageSize)
		}
		params.Size = size
	}
	return params, nil
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}
