// Package backendtest provides an in-process fake of the fitplate REST backend. It
// speaks the real envelope format and issues HS256-signed JWTs, so it can stand in
// for the backend in tests and during local development.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/roles"
)

// SigningKey is the HMAC key used to sign access tokens issued by the fake
var SigningKey = []byte("backendtest-signing-key")

// Request records a call received by the fake
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

type account struct {
	password string
	claims   jwt.MapClaims
	identity backend.Identity
}

type override struct {
	status  int
	success bool
	message string
}

// Backend is a fake REST backend. The zero value is not usable: call New.
type Backend struct {
	http.Handler

	mu         sync.Mutex
	accounts   map[string]account
	sessions   map[string]account
	catalogs   map[backend.Kind][]map[string]any
	users      []backend.UserSummary
	plans      map[string]backend.MealPlan
	current    string
	analyses   map[string]backend.BodyAnalysis
	payments   map[string]*backend.Payment
	polls      map[string]int
	requests   []Request
	overrides  map[string]override
	delays     map[string]time.Duration
	pollsToPay int
}

// New initializes a fake backend with a small seeded catalog and user list
func New() *Backend {
	b := &Backend{
		accounts:   make(map[string]account),
		sessions:   make(map[string]account),
		catalogs:   make(map[backend.Kind][]map[string]any),
		plans:      make(map[string]backend.MealPlan),
		analyses:   make(map[string]backend.BodyAnalysis),
		payments:   make(map[string]*backend.Payment),
		polls:      make(map[string]int),
		overrides:  make(map[string]override),
		delays:     make(map[string]time.Duration),
		pollsToPay: 2,
	}
	for _, name := range []string{"Oatmeal", "Greek yogurt", "Chicken breast", "Brown rice"} {
		b.catalogs[backend.KindFoods] = append(b.catalogs[backend.KindFoods], map[string]any{
			"id":   uuid.NewString(),
			"name": name,
		})
	}
	for _, name := range []string{"Peanuts", "Gluten", "Lactose"} {
		b.catalogs[backend.KindAllergens] = append(b.catalogs[backend.KindAllergens], map[string]any{
			"id":   uuid.NewString(),
			"name": name,
		})
	}
	b.users = []backend.UserSummary{
		{Id: "u-1", FullName: "Ada Admin", Email: "ada@fitplate.app", Role: "ADMIN", MembershipTier: "STAFF"},
		{Id: "u-2", FullName: "Uma User", Email: "uma@fitplate.app", Role: "USER", MembershipTier: "FREE"},
	}

	r := mux.NewRouter()
	r.Use(b.record)
	r.Path("/auth/login").Methods("POST").HandlerFunc(b.handleLogin)

	authed := r.NewRoute().Subrouter()
	authed.Use(b.requireToken)
	authed.Path("/users/me").Methods("GET").HandlerFunc(b.handleMe)
	authed.Path("/meal-plans/generate").Methods("POST").HandlerFunc(b.handleGeneratePlan)
	authed.Path("/meal-plans/current").Methods("GET").HandlerFunc(b.handleCurrentPlan)
	authed.Path("/meal-plans/ai/{id}").Methods("GET").HandlerFunc(b.handleGetPlan)
	authed.Path("/assessments/{id}/body-image").Methods("POST").HandlerFunc(b.handleUploadBodyImage)
	authed.Path("/assessments/{id}/body-image").Methods("GET").HandlerFunc(b.handleGetBodyImage)
	authed.Path("/payments/subscriptions").Methods("POST").HandlerFunc(b.handleCreatePayment)
	authed.Path("/payments/{id}").Methods("GET").HandlerFunc(b.handleGetPayment)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(b.requireAdmin)
	admin.Path("/users").Methods("GET").HandlerFunc(b.handleListUsers)
	admin.Path("/users/{id}/ban").Methods("POST").HandlerFunc(b.handleBan(true))
	admin.Path("/users/{id}/unban").Methods("POST").HandlerFunc(b.handleBan(false))
	admin.Path("/{kind}").Methods("GET").HandlerFunc(b.handleListCatalog)
	admin.Path("/{kind}").Methods("POST").HandlerFunc(b.handleCreateCatalogItem)
	admin.Path("/{kind}/{id}").Methods("GET").HandlerFunc(b.handleGetCatalogItem)
	admin.Path("/{kind}/{id}").Methods("PUT").HandlerFunc(b.handleUpdateCatalogItem)
	admin.Path("/{kind}/{id}").Methods("DELETE").HandlerFunc(b.handleDeleteCatalogItem)

	b.Handler = r
	return b
}

// AddAccount registers a user who can log in with the given credentials. The access
// tokens issued to them carry the given claims.
func (b *Backend) AddAccount(email, password string, claims jwt.MapClaims, identity backend.Identity) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.accounts[email] = account{password: password, claims: claims, identity: identity}
	return b
}

// IssueToken returns a valid access token for a registered account without going
// through login
func (b *Backend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[email]
	if !ok {
		panic(fmt.Sprintf("backendtest: no account for %s", email))
	}
	return b.issue(acct)
}

// Revoke invalidates an access token: subsequent calls with it get 401
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, token)
}

// Override forces every request to method+path to produce the given response
func (b *Backend) Override(method, path string, status int, success bool, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.overrides[method+" "+path] = override{status, success, message}
}

// Delay makes every request to path wait before it is handled
func (b *Backend) Delay(path string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.delays[path] = d
}

// SetPollsUntilPaid controls how many status checks a payment answers PENDING before
// it becomes PAID
func (b *Backend) SetPollsUntilPaid(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pollsToPay = n
}

// Requests returns every request received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Request(nil), b.requests...)
}

// RequestsTo returns the requests received for method+path
func (b *Backend) RequestsTo(method, path string) []Request {
	matching := make([]Request, 0)
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			matching = append(matching, r)
		}
	}
	return matching
}

// UserBanned reports whether the seeded user with the given ID is banned
func (b *Backend) UserBanned(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if u.Id == id {
			return u.Banned
		}
	}
	return false
}

func (b *Backend) issue(acct account) string {
	claims := jwt.MapClaims{
		"sub": acct.identity.Id,
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": uuid.NewString(),
	}
	for k, v := range acct.claims {
		claims[k] = v
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(SigningKey)
	if err != nil {
		panic(err)
	}
	b.sessions[token] = acct
	return token
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: req.Method,
			Path:   req.URL.Path,
			Query:  req.URL.Query(),
		})
		o, overridden := b.overrides[req.Method+" "+req.URL.Path]
		delay := b.delays[req.URL.Path]
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return
			}
		}
		if overridden {
			writeEnvelope(res, o.status, o.success, o.message, nil)
			return
		}
		next.ServeHTTP(res, req)
	})
}

func (b *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		token := strings.TrimPrefix(req.Header.Get("authorization"), "Bearer ")
		b.mu.Lock()
		_, ok := b.sessions[token]
		b.mu.Unlock()
		if !ok {
			writeEnvelope(res, http.StatusUnauthorized, false, "Full authentication is required", nil)
			return
		}
		next.ServeHTTP(res, req)
	})
}

func (b *Backend) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		acct := b.accountFor(req)
		if roles.FromClaims(acct.claims) != roles.Admin {
			writeEnvelope(res, http.StatusForbidden, false, "Access is denied", nil)
			return
		}
		next.ServeHTTP(res, req)
	})
}

func (b *Backend) accountFor(req *http.Request) account {
	token := strings.TrimPrefix(req.Header.Get("authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[token]
}

func writeEnvelope(res http.ResponseWriter, status int, success bool, message string, data any) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(backend.Envelope[any]{
		Success:   success,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
}

func ok(res http.ResponseWriter, data any) {
	writeEnvelope(res, http.StatusOK, true, "OK", data)
}

func parseListParams(req *http.Request) (page, size int, search string) {
	q := req.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	size, _ = strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 20
	}
	return page, size, strings.ToLower(q.Get("search"))
}

func paginate[T any](items []T, page, size int) backend.Page[T] {
	start := page * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return backend.Page[T]{
		Content:       append([]T{}, items[start:end]...),
		TotalElements: int64(len(items)),
	}
}
