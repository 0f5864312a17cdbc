package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/httpserver/handlers"
	"github.com/pelajarin/kelas/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.Auth(d.Credentials, d.Logger))
		r.Get("/", handlers.BookmarkList(d))
		r.Post("/{id}/toggle", handlers.BookmarkToggle(d))
	})
}
