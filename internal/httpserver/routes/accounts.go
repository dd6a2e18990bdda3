package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/promreg/promregistry/internal/httpserver/deps"
	"github.com/promreg/promregistry/internal/httpserver/handlers"
)

func init() { Register(registerAccounts) }

func registerAccounts(r chi.Router, d deps.Deps) {
	r.Get("/api/accounts", handlers.ListAccounts(d))
	r.Get("/api/accounts/{name}", handlers.GetAccount(d))
	r.Get("/api/accounts/{name}/metrics", handlers.GetAccountMetrics(d))
}
