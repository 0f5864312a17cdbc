package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/httpserver/handlers"
)

func init() { Register(registerSessionKeys) }

func registerSessionKeys(r chi.Router, d deps.Deps) {
	r.Post("/api/session", handlers.IssueSessionKey(d))
	r.Delete("/api/session", handlers.RevokeSessionKey(d))
}
