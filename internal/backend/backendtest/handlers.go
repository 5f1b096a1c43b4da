package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard/internal/backend"
)

func (b *Backend) handleLogin(res http.ResponseWriter, req *http.Request) {
	var creds backend.Credentials
	if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
		writeEnvelope(res, http.StatusBadRequest, false, "Malformed login request", nil)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acct, found := b.accounts[creds.Email]
	if !found || acct.password != creds.Password {
		writeEnvelope(res, http.StatusUnauthorized, false, "Invalid email or password", nil)
		return
	}
	ok(res, backend.TokenPair{
		AccessToken:  b.issue(acct),
		RefreshToken: uuid.NewString(),
	})
}

func (b *Backend) handleMe(res http.ResponseWriter, req *http.Request) {
	ok(res, b.accountFor(req).identity)
}

func (b *Backend) handleGeneratePlan(res http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	if q.Get("assessmentId") == "" || q.Get("period") == "" {
		writeEnvelope(res, http.StatusBadRequest, false, "assessmentId and period are required", nil)
		return
	}
	plan := backend.MealPlan{
		MealPlanSummary: backend.MealPlanSummary{
			Id:            uuid.NewString(),
			AssessmentId:  q.Get("assessmentId"),
			Period:        q.Get("period"),
			TotalCalories: 2100,
			CreatedAt:     time.Now().UTC(),
		},
		Days: []backend.MealPlanDay{
			{
				Date: time.Now().UTC().Format("2006-01-02"),
				Meals: []backend.Meal{
					{Type: "BREAKFAST", Name: "Oatmeal with berries", Calories: 450},
					{Type: "LUNCH", Name: "Chicken and brown rice", Calories: 800},
					{Type: "DINNER", Name: "Greek yogurt bowl", Calories: 850},
				},
			},
		},
	}

	b.mu.Lock()
	b.plans[plan.Id] = plan
	b.current = plan.Id
	b.mu.Unlock()
	ok(res, plan.MealPlanSummary)
}

func (b *Backend) handleCurrentPlan(res http.ResponseWriter, req *http.Request) {
	b.mu.Lock()
	plan, found := b.plans[b.current]
	b.mu.Unlock()
	if !found {
		writeEnvelope(res, http.StatusNotFound, false, "No meal plan has been generated yet", nil)
		return
	}
	ok(res, plan)
}

func (b *Backend) handleGetPlan(res http.ResponseWriter, req *http.Request) {
	b.mu.Lock()
	plan, found := b.plans[mux.Vars(req)["id"]]
	b.mu.Unlock()
	if !found {
		writeEnvelope(res, http.StatusNotFound, false, "Meal plan not found", nil)
		return
	}
	ok(res, plan)
}

func (b *Backend) handleUploadBodyImage(res http.ResponseWriter, req *http.Request) {
	file, _, err := req.FormFile("file")
	if err != nil {
		writeEnvelope(res, http.StatusBadRequest, false, "An image file is required", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeEnvelope(res, http.StatusBadRequest, false, "Image is empty", nil)
		return
	}

	id := mux.Vars(req)["id"]
	analysis := backend.BodyAnalysis{
		AssessmentId:   id,
		ImageUrl:       "https://images.fitplate.test/" + id + ".jpg",
		BodyFatPercent: 21.5,
		BodyType:       "MESOMORPH",
		Summary:        "Balanced composition",
		AnalyzedAt:     time.Now().UTC(),
	}
	b.mu.Lock()
	b.analyses[id] = analysis
	b.mu.Unlock()
	ok(res, analysis)
}

func (b *Backend) handleGetBodyImage(res http.ResponseWriter, req *http.Request) {
	b.mu.Lock()
	analysis, found := b.analyses[mux.Vars(req)["id"]]
	b.mu.Unlock()
	if !found {
		writeEnvelope(res, http.StatusNotFound, false, "No analysis yet", nil)
		return
	}
	ok(res, analysis)
}

func (b *Backend) handleCreatePayment(res http.ResponseWriter, req *http.Request) {
	var payload struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil || payload.Plan == "" {
		writeEnvelope(res, http.StatusBadRequest, false, "plan is required", nil)
		return
	}
	payment := &backend.Payment{
		Id:          uuid.NewString(),
		Plan:        payload.Plan,
		Amount:      999,
		Currency:    "USD",
		Status:      backend.PaymentStatusPending,
		CheckoutUrl: "https://checkout.fitplate.test/session/" + uuid.NewString(),
	}
	b.mu.Lock()
	b.payments[payment.Id] = payment
	b.mu.Unlock()
	ok(res, payment)
}

func (b *Backend) handleGetPayment(res http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	payment, found := b.payments[id]
	if !found {
		writeEnvelope(res, http.StatusNotFound, false, "Payment not found", nil)
		return
	}
	b.polls[id]++
	if payment.Status == backend.PaymentStatusPending && b.polls[id] > b.pollsToPay {
		payment.Status = backend.PaymentStatusPaid
	}
	ok(res, payment)
}

func (b *Backend) handleListUsers(res http.ResponseWriter, req *http.Request) {
	page, size, search := parseListParams(req)
	b.mu.Lock()
	matching := make([]backend.UserSummary, 0, len(b.users))
	for _, u := range b.users {
		if search == "" || strings.Contains(strings.ToLower(u.FullName+" "+u.Email), search) {
			matching = append(matching, u)
		}
	}
	b.mu.Unlock()
	ok(res, paginate(matching, page, size))
}

func (b *Backend) handleBan(banned bool) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.users {
			if b.users[i].Id == id {
				b.users[i].Banned = banned
				ok(res, nil)
				return
			}
		}
		writeEnvelope(res, http.StatusNotFound, false, "User not found", nil)
	}
}

func (b *Backend) catalogKind(res http.ResponseWriter, req *http.Request) (backend.Kind, bool) {
	kind, valid := backend.ParseKind(mux.Vars(req)["kind"])
	if !valid {
		writeEnvelope(res, http.StatusNotFound, false, "No such catalog", nil)
	}
	return kind, valid
}

func (b *Backend) handleListCatalog(res http.ResponseWriter, req *http.Request) {
	kind, valid := b.catalogKind(res, req)
	if !valid {
		return
	}
	page, size, search := parseListParams(req)
	b.mu.Lock()
	matching := make([]map[string]any, 0)
	for _, item := range b.catalogs[kind] {
		name, _ := item["name"].(string)
		if search == "" || strings.Contains(strings.ToLower(name), search) {
			matching = append(matching, item)
		}
	}
	b.mu.Unlock()
	ok(res, paginate(matching, page, size))
}

func (b *Backend) findCatalogItem(kind backend.Kind, id string) int {
	for i, item := range b.catalogs[kind] {
		if item["id"] == id {
			return i
		}
	}
	return -1
}

func (b *Backend) handleGetCatalogItem(res http.ResponseWriter, req *http.Request) {
	kind, valid := b.catalogKind(res, req)
	if !valid {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findCatalogItem(kind, mux.Vars(req)["id"])
	if i < 0 {
		writeEnvelope(res, http.StatusNotFound, false, "Item not found", nil)
		return
	}
	ok(res, b.catalogs[kind][i])
}

func (b *Backend) handleCreateCatalogItem(res http.ResponseWriter, req *http.Request) {
	kind, valid := b.catalogKind(res, req)
	if !valid {
		return
	}
	var item map[string]any
	if err := json.NewDecoder(req.Body).Decode(&item); err != nil {
		writeEnvelope(res, http.StatusBadRequest, false, "Malformed item", nil)
		return
	}
	if name, _ := item["name"].(string); name == "" {
		writeEnvelope(res, http.StatusBadRequest, false, "name is required", nil)
		return
	}
	item["id"] = uuid.NewString()
	b.mu.Lock()
	b.catalogs[kind] = append(b.catalogs[kind], item)
	b.mu.Unlock()
	writeEnvelope(res, http.StatusCreated, true, "Created", item)
}

func (b *Backend) handleUpdateCatalogItem(res http.ResponseWriter, req *http.Request) {
	kind, valid := b.catalogKind(res, req)
	if !valid {
		return
	}
	var item map[string]any
	if err := json.NewDecoder(req.Body).Decode(&item); err != nil {
		writeEnvelope(res, http.StatusBadRequest, false, "Malformed item", nil)
		return
	}
	id := mux.Vars(req)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findCatalogItem(kind, id)
	if i < 0 {
		writeEnvelope(res, http.StatusNotFound, false, "Item not found", nil)
		return
	}
	item["id"] = id
	b.catalogs[kind][i] = item
	ok(res, item)
}

func (b *Backend) handleDeleteCatalogItem(res http.ResponseWriter, req *http.Request) {
	kind, valid := b.catalogKind(res, req)
	if !valid {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findCatalogItem(kind, mux.Vars(req)["id"])
	if i < 0 {
		writeEnvelope(res, http.StatusNotFound, false, "Item not found", nil)
		return
	}
	items := b.catalogs[kind]
	b.catalogs[kind] = append(items[:i], items[i+1:]...)
	ok(res, nil)
}
