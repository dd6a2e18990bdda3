package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/promreg/promregistry/internal/domain"
	"github.com/promreg/promregistry/internal/httpserver/deps"
	"github.com/promreg/promregistry/internal/registry"
)

// accountView is the externally visible form of a registered account.
// Secret material is never serialized; only whether it exists.
type accountView struct {
	Name           string                  `json:"name"`
	Endpoint       string                  `json:"endpoint"`
	SupportedTypes []domain.CapabilityType `json:"supported_types,omitempty"`
	Authenticated  bool                    `json:"authenticated"`
	HealthChecked  bool                    `json:"health_checked"`
}

func viewOf(record *domain.AccountRecord) accountView {
	return accountView{
		Name:           record.Name,
		Endpoint:       record.Endpoint,
		SupportedTypes: record.SupportedTypes,
		Authenticated:  !record.Credential.Empty(),
		HealthChecked:  record.Eligible(),
	}
}

// ListAccounts returns every registered account.
func ListAccounts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := d.Registry.All()
		views := make([]accountView, 0, len(records))
		for _, record := range records {
			views = append(views, viewOf(record))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(views)
	}
}

// GetAccount returns one account by name, 404 when unknown.
func GetAccount(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		record, err := d.Registry.Get(name)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				writeNotFound(w, name)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(viewOf(record))
	}
}

type accountMetricsResponse struct {
	Account     string    `json:"account"`
	RefreshedAt time.Time `json:"refreshed_at"`
	MetricNames []string  `json:"metric_names"`
}

// GetAccountMetrics returns the cached metric names of one account.
func GetAccountMetrics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		if _, err := d.Registry.Get(name); err != nil {
			writeNotFound(w, name)
			return
		}

		names, refreshed, ok := d.Descriptors.Get(name)
		if !ok {
			// Registered but not refreshed yet (or not a metrics store).
			names = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(accountMetricsResponse{
			Account:     name,
			RefreshedAt: refreshed,
			MetricNames: names,
		})
	}
}

func writeNotFound(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "account not found: " + name,
	})
}
