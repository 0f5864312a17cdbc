package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/domain"
	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/httpserver/mw"
	"github.com/pelajarin/kelas/internal/session"
)

type bookmarkedCourse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Duration    string `json:"duration"`
	Instructor  string `json:"instructor"`
	VideoID     string `json:"videoId"`
	Bookmarked  bool   `json:"bookmarked"`
}

type bookmarkListResponse struct {
	Bookmarks []bookmarkedCourse `json:"bookmarks"`
}

// BookmarkList fetches and normalizes the learner's bookmarked courses.
// Partial upstream failures degrade to an empty list rather than an error.
func BookmarkList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := session.NewBookmarkList(d.API, d.Logger, mw.BearerFrom(r.Context()))
		if err := list.Load(r.Context()); err != nil {
			writeError(w, upstreamStatus(err), "session expired")
			return
		}

		courses := list.Courses()
		out := bookmarkListResponse{Bookmarks: make([]bookmarkedCourse, 0, len(courses))}
		for _, c := range courses {
			out.Bookmarks = append(out.Bookmarks, bookmarkedCourse{
				ID:          c.ID,
				Title:       c.Title,
				Description: c.Description,
				Level:       c.Level,
				Duration:    c.Duration,
				Instructor:  c.Instructor,
				VideoID:     domain.ExtractVideoID(c.VideoURL),
				Bookmarked:  c.Bookmarked,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// BookmarkToggle flips a bookmark from the bookmarks page and reports the
// server's resulting state.
func BookmarkToggle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || courseID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid course id")
			return
		}

		list := session.NewBookmarkList(d.API, d.Logger, mw.BearerFrom(r.Context()))
		bookmarked, err := list.Toggle(r.Context(), courseID)
		if err != nil {
			writeError(w, upstreamStatus(err), "bookmark toggle failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
	}
}
