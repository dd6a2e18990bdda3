package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/promreg/promregistry/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Accounts int  `json:"accounts"`
}

// Readyz reports readiness. Bootstrap runs before the server starts
// listening, so once this handler answers, the registry is populated (an
// empty registry is a legal, degenerate outcome).
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready:    true,
			Accounts: d.Registry.Count(),
		})
	}
}
