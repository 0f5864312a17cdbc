package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/bus"
	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/session"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

type scriptedAPI struct {
	course []byte
}

func (a scriptedAPI) FetchCourse(ctx context.Context, bearer string, courseID int64) ([]byte, error) {
	return a.course, nil
}

func (a scriptedAPI) UpdateProgress(ctx context.Context, bearer string, courseID, moduleID int64) (*courseapi.ProgressResult, error) {
	return &courseapi.ProgressResult{Success: true}, nil
}

func (a scriptedAPI) ToggleBookmark(ctx context.Context, bearer string, courseID int64) (bool, error) {
	return true, nil
}

func (a scriptedAPI) FetchBookmarks(ctx context.Context, bearer string) ([]byte, error) {
	return []byte(`[]`), nil
}

func (a scriptedAPI) RecordActivity(ctx context.Context, bearer string, courseID int64, activityType string) error {
	return nil
}

func (a scriptedAPI) SyncCompletedCourses(ctx context.Context, bearer string) error {
	return nil
}

func newCourseRouter(api session.API) (chi.Router, deps.Deps) {
	d := deps.Deps{
		Logger:   logger.NewNop(),
		API:      api,
		Sessions: session.NewRegistry(),
		Bus:      bus.New(),
	}
	r := chi.NewRouter()
	r.Route("/api/courses/{id}", func(r chi.Router) {
		r.Get("/", CourseDetail(d))
		r.Post("/modules/{moduleID}/select", SelectModule(d))
		r.Post("/modules/{moduleID}/complete", CompleteModule(d))
		r.Delete("/session", DiscardSession(d))
	})
	return r, d
}

func doRequest(r chi.Router, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCourseDetailOpensSession(t *testing.T) {
	api := scriptedAPI{course: []byte(`{
		"id": 3,
		"title": "Dasar Go",
		"videoUrl": "https://www.youtube.com/watch?v=abc123&t=5",
		"modules": [
			{"id": 10, "title": "Intro", "completed": true},
			{"id": 11, "title": "Syntax", "completed": false}
		]
	}`)}
	r, d := newCourseRouter(api)

	rec := doRequest(r, http.MethodGet, "/api/courses/3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}

	var view sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.State != "ready" {
		t.Errorf("state = %q, want ready", view.State)
	}
	if view.Course == nil {
		t.Fatal("no course in response")
	}
	if view.Course.VideoID != "abc123" {
		t.Errorf("videoId = %q, want extracted abc123", view.Course.VideoID)
	}
	if view.Course.Progress != 50 {
		t.Errorf("progress = %d, want 50", view.Course.Progress)
	}
	if view.Course.ActiveModuleID != 11 {
		t.Errorf("activeModuleId = %d, want 11", view.Course.ActiveModuleID)
	}
	if d.Sessions.Count() != 1 {
		t.Errorf("session count = %d, want 1", d.Sessions.Count())
	}
}

func TestCompleteModuleThroughHandler(t *testing.T) {
	api := scriptedAPI{course: []byte(`{
		"id": 3,
		"modules": [
			{"id": 10, "completed": false},
			{"id": 11, "completed": false}
		]
	}`)}
	r, _ := newCourseRouter(api)

	if rec := doRequest(r, http.MethodGet, "/api/courses/3"); rec.Code != http.StatusOK {
		t.Fatalf("open session: status = %d", rec.Code)
	}

	rec := doRequest(r, http.MethodPost, "/api/courses/3/modules/10/complete")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}

	var view sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Course.Progress != 50 {
		t.Errorf("progress = %d, want 50", view.Course.Progress)
	}
	if view.Course.ActiveModuleID != 11 {
		t.Errorf("activeModuleId = %d, want advanced to 11", view.Course.ActiveModuleID)
	}

	// Unknown module id maps to 404.
	if rec := doRequest(r, http.MethodPost, "/api/courses/3/modules/999/complete"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown module: status = %d, want 404", rec.Code)
	}
}

func TestMutationsRequireLiveSession(t *testing.T) {
	r, _ := newCourseRouter(scriptedAPI{course: []byte(`{"id": 3}`)})

	if rec := doRequest(r, http.MethodPost, "/api/courses/3/modules/10/complete"); rec.Code != http.StatusNotFound {
		t.Errorf("complete without session: status = %d, want 404", rec.Code)
	}
	if rec := doRequest(r, http.MethodDelete, "/api/courses/3/session"); rec.Code != http.StatusNotFound {
		t.Errorf("discard without session: status = %d, want 404", rec.Code)
	}
}

func TestDiscardSessionEndsSession(t *testing.T) {
	r, d := newCourseRouter(scriptedAPI{course: []byte(`{"id": 3, "modules": []}`)})

	if rec := doRequest(r, http.MethodGet, "/api/courses/3"); rec.Code != http.StatusOK {
		t.Fatalf("open session: status = %d", rec.Code)
	}
	if rec := doRequest(r, http.MethodDelete, "/api/courses/3/session"); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if d.Sessions.Count() != 0 {
		t.Errorf("session count = %d, want 0", d.Sessions.Count())
	}
}
