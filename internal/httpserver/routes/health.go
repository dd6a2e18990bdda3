package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/promreg/promregistry/internal/httpserver/deps"
	"github.com/promreg/promregistry/internal/httpserver/handlers"
)

func init() { Register(registerHealth) }

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/api/health", handlers.AccountHealth(d))
}
