package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/httpserver/handlers"
	"github.com/pelajarin/kelas/internal/httpserver/mw"
)

func init() { Register(registerCourses) }

func registerCourses(r chi.Router, d deps.Deps) {
	r.Route("/api/courses/{id}", func(r chi.Router) {
		r.Use(mw.Auth(d.Credentials, d.Logger))
		r.Get("/", handlers.CourseDetail(d))
		r.Post("/modules/{moduleID}/select", handlers.SelectModule(d))
		r.Post("/modules/{moduleID}/complete", handlers.CompleteModule(d))
		r.Post("/bookmark", handlers.ToggleCourseBookmark(d))
		r.Delete("/session", handlers.DiscardSession(d))
	})
}
