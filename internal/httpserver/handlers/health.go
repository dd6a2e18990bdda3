package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/promreg/promregistry/internal/httpserver/deps"
)

const (
	statusUp       = "UP"
	statusDown     = "DOWN"
	statusDisabled = "DISABLED"
)

type accountHealth struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status   string                   `json:"status"`
	Accounts map[string]accountHealth `json:"accounts,omitempty"`
}

// AccountHealth reports the aggregate health of all tracked accounts with
// per-account detail. Returns 503 when any tracked verdict is unhealthy so
// a supervisor can act on the status code alone. With zero tracked accounts
// the aggregate is up: no account has been observed unhealthy.
func AccountHealth(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if !d.HealthEnabled {
			_ = json.NewEncoder(w).Encode(healthResponse{Status: statusDisabled})
			return
		}

		aggregate := d.HealthCache.Aggregate()

		accounts := make(map[string]accountHealth, len(aggregate.Accounts))
		for name, verdict := range aggregate.Accounts {
			accounts[name] = accountHealth{
				Healthy:   verdict.Healthy,
				CheckedAt: verdict.CheckedAt,
				Error:     verdict.Error,
			}
		}

		status := statusUp
		if !aggregate.Up {
			status = statusDown
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:   status,
			Accounts: accounts,
		})
	}
}
