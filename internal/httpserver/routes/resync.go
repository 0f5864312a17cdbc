package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/httpserver/handlers"
	"github.com/pelajarin/kelas/internal/httpserver/mw"
)

func init() { Register(registerResync) }

func registerResync(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/resync", handlers.Resync(d))
}
