package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/api/controllers"
	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/internal/orders"
	"github.com/jimmynenos/ordering-backend/internal/session"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
)

type fetcherFunc func(ctx context.Context) ([]menu.Item, error)

func (f fetcherFunc) FetchMenu(ctx context.Context) ([]menu.Item, error) {
	return f(ctx)
}

type menuResolver struct {
	svc *menu.Service
}

func (r menuResolver) ItemByID(id menu.ItemID) *menu.Item {
	item, err := r.svc.ItemByID(id)
	if err != nil {
		return nil
	}
	return item
}

type recordingSubmitter struct {
	orders []*orders.CompletedOrder
	err    error
}

func (s *recordingSubmitter) Submit(_ context.Context, order *orders.CompletedOrder) error {
	s.orders = append(s.orders, order)
	return s.err
}

func testCatalog() []menu.Item {
	price := decimal.RequireFromString
	return []menu.Item{
		{
			ID:        "7",
			Name:      "Buffalo Chicken Wings",
			ShortName: "Buffalo Wings",
			Category:  "Wings",
			Sizes: []menu.Size{
				{Name: "10 Count", Price: price("9.99")},
				{Name: "24 Count", Price: price("19.99")},
			},
			Customization: map[string][]menu.Option{
				"Sauce": {
					{Name: "Buffalo", Price: price("0.00")},
					{Name: "BBQ", Price: price("0.00")},
				},
			},
		},
		{
			ID:        "31",
			Name:      "Cola",
			Category:  "Drinks",
			BasePrice: price("2.49"),
		},
	}
}

func testDeps(t *testing.T, submitter orders.Submitter) Deps {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev"},
		Session: config.SessionConfig{
			SearchLimit:  5,
			MinScore:     0.3,
			ResolveScore: 0.6,
			SuggestScore: 0.2,
			SuggestLimit: 3,
			MenuSummaryN: 5,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	menuSvc, err := menu.NewService(fetcherFunc(func(context.Context) ([]menu.Item, error) {
		return testCatalog(), nil
	}), nil, logg, nil)
	if err != nil {
		t.Fatalf("new menu service: %v", err)
	}
	if err := menuSvc.Load(context.Background()); err != nil {
		t.Fatalf("load menu: %v", err)
	}

	registry := session.NewRegistry(menuResolver{svc: menuSvc}, 0, logg)
	finalizer, err := orders.NewFinalizer(submitter, logg, nil)
	if err != nil {
		t.Fatalf("new finalizer: %v", err)
	}

	reg := prometheus.NewRegistry()
	return Deps{
		Config:    cfg,
		Logger:    logg,
		Menu:      menuSvc,
		Registry:  registry,
		Finalizer: finalizer,
		Metrics:   metrics.NewOrderingMetrics(reg),
		Gatherer:  reg,
		Checks: map[string]controllers.ReadyCheck{
			"menu": func(context.Context) error {
				_, err := menuSvc.Index()
				return err
			},
		},
	}
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func dataField(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope.Data
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := NewRouter(testDeps(t, nil))

	if resp := do(t, router, http.MethodGet, "/health/live", ""); resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}
	if resp := do(t, router, http.MethodGet, "/health/ready", ""); resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}
	if resp := do(t, router, http.MethodGet, "/metrics", ""); resp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", resp.Code)
	}
}

func TestRouterMenuEndpoints(t *testing.T) {
	router := NewRouter(testDeps(t, nil))

	resp := do(t, router, http.MethodPost, "/api/v1/menu/search", `{"query":"wings"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("search: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/v1/menu/categories", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("categories: expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Wings") {
		t.Fatalf("expected Wings category: %s", resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/v1/menu/categories/Drinks/items", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("category items: expected 200 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/menu/items/31", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("item: expected 200 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/menu/summary", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("summary: expected 200 got %d", resp.Code)
	}
}

// Full conversation over the wire: add wings, pick a sauce, add a drink,
// give a name, check out.
func TestRouterOrderFlow(t *testing.T) {
	submitter := &recordingSubmitter{}
	router := NewRouter(testDeps(t, submitter))
	base := "/api/v1/sessions/phone-555"

	resp := do(t, router, http.MethodPost, base+"/cart/items",
		`{"item":"buffalo wings","size":"10 Count"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add wings: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	data := dataField(t, resp)
	if data["state"] != string(session.StateCustomizing) {
		t.Fatalf("expected customizing after wings, got %v", data["state"])
	}

	resp = do(t, router, http.MethodPost, base+"/cart/customizations",
		`{"group":"Sauce","option":"BBQ"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("sauce: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	data = dataField(t, resp)
	if data["state"] != string(session.StateTakingOrder) {
		t.Fatalf("expected taking_order after sauce, got %v", data["state"])
	}

	resp = do(t, router, http.MethodPost, base+"/cart/items", `{"item":"cola","quantity":2}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add cola: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, base+"/cart", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("cart: expected 200 got %d", resp.Code)
	}
	data = dataField(t, resp)
	if total := fmt.Sprintf("%v", data["total"]); total != "14.97" {
		t.Fatalf("expected total 14.97, got %v", total)
	}

	// Checkout without a name is refused, the cart survives.
	resp = do(t, router, http.MethodPost, base+"/checkout", "")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("nameless checkout: expected 422 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodPut, base+"/customer", `{"name":"Sam"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("customer: expected 200 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodPost, base+"/checkout", "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	data = dataField(t, resp)
	if submitted, _ := data["submitted"].(bool); !submitted {
		t.Fatalf("expected submitted order")
	}
	if len(submitter.orders) != 1 {
		t.Fatalf("expected one submitted order, got %d", len(submitter.orders))
	}
	if got := submitter.orders[0].CustomerPhone; got != orders.DefaultPhone {
		t.Fatalf("expected default phone, got %q", got)
	}

	// The session is reset for the next order.
	resp = do(t, router, http.MethodGet, base, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("session: expected 200 got %d", resp.Code)
	}
	data = dataField(t, resp)
	if data["state"] != string(session.StateTakingOrder) {
		t.Fatalf("expected reset state, got %v", data["state"])
	}
}

func TestRouterRemoveAndQuantity(t *testing.T) {
	router := NewRouter(testDeps(t, nil))
	base := "/api/v1/sessions/chat-1"

	resp := do(t, router, http.MethodPost, base+"/cart/items", `{"item_id":"31"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add: expected 201 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodPatch, base+"/cart/items", `{"item":"cola","quantity":3}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("patch: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodPatch, base+"/cart/items", `{"item":"cola","quantity":0}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity: expected 400 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodDelete, base+"/cart/items", `{"item":"cola"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", resp.Code)
	}

	resp = do(t, router, http.MethodDelete, base+"/cart/items", `{"item":"cola"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("delete again: expected 404 got %d", resp.Code)
	}
}
