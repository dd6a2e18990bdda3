package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/promreg/promregistry/internal/domain"
)

type staticClient struct{}

func (staticClient) Healthy(ctx context.Context) error                 { return nil }
func (staticClient) MetricNames(ctx context.Context) ([]string, error) { return nil, nil }

func TestListAccountsRedactsCredentials(t *testing.T) {
	d := testDeps()
	d.Registry.Register(&domain.AccountRecord{
		Name:           "prod",
		Endpoint:       "http://prom:9090",
		Credential:     domain.Credential{Username: "metrics", Password: "s3cret"},
		SupportedTypes: []domain.CapabilityType{domain.CapabilityMetricsStore},
		Client:         staticClient{},
	})

	rec := doRequest(t, ListAccounts(d), "/api/accounts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(body, "s3cret") {
		t.Errorf("response leaks credential material: %s", body)
	}

	var views []accountView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d accounts, want 1", len(views))
	}
	if !views[0].Authenticated || !views[0].HealthChecked {
		t.Errorf("view = %+v, want authenticated and health-checked flags set", views[0])
	}
}

func TestGetAccountNotFound(t *testing.T) {
	d := testDeps()

	r := chi.NewRouter()
	r.Get("/api/accounts/{name}", GetAccount(d))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown account", rec.Code)
	}
}

func TestGetAccountMetrics(t *testing.T) {
	d := testDeps()
	d.Registry.Register(&domain.AccountRecord{Name: "prod", Endpoint: "http://prom:9090", Client: staticClient{}})
	d.Descriptors.Set("prod", []string{"up", "go_goroutines"})

	r := chi.NewRouter()
	r.Get("/api/accounts/{name}/metrics", GetAccountMetrics(d))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts/prod/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp accountMetricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Account != "prod" || len(resp.MetricNames) != 2 {
		t.Errorf("response = %+v, want prod with 2 metric names", resp)
	}
}

func TestGetAccountMetricsUnknownAccount(t *testing.T) {
	d := testDeps()

	r := chi.NewRouter()
	r.Get("/api/accounts/{name}/metrics", GetAccountMetrics(d))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts/ghost/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
