package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pelajarin/kelas/internal/domain"
	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/httpserver/mw"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/session"
)

type moduleView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	VideoID     string `json:"videoId,omitempty"`
	Completed   bool   `json:"completed"`
	Order       int    `json:"order"`
}

type courseView struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Level          string       `json:"level"`
	Duration       string       `json:"duration"`
	Instructor     string       `json:"instructor"`
	VideoID        string       `json:"videoId"`
	Bookmarked     bool         `json:"bookmarked"`
	Enrolled       bool         `json:"enrolled"`
	Completed      bool         `json:"completed"`
	Progress       int          `json:"progress"`
	ActiveModuleID int64        `json:"activeModuleId,omitempty"`
	Modules        []moduleView `json:"modules"`
}

type sessionView struct {
	State  string      `json:"state"`
	Error  string      `json:"error,omitempty"`
	Course *courseView `json:"course,omitempty"`
}

func renderSnapshot(snap session.Snapshot) sessionView {
	view := sessionView{
		State: snap.State.String(),
		Error: snap.Error,
	}
	if snap.Course == nil {
		return view
	}

	c := snap.Course
	cv := &courseView{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Level:          c.Level,
		Duration:       c.Duration,
		Instructor:     c.Instructor,
		VideoID:        domain.ExtractVideoID(c.VideoURL),
		Bookmarked:     c.Bookmarked,
		Enrolled:       c.Enrolled,
		Completed:      c.Completed,
		Progress:       snap.Progress,
		ActiveModuleID: snap.ActiveModuleID,
		Modules:        make([]moduleView, 0, len(c.Modules)),
	}
	for _, m := range c.Modules {
		mv := moduleView{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Content:     m.Content,
			Completed:   m.Completed,
			Order:       m.Order,
		}
		if m.VideoURL != "" {
			mv.VideoID = domain.ExtractVideoID(m.VideoURL)
		}
		cv.Modules = append(cv.Modules, mv)
	}
	view.Course = cv
	return view
}

func courseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// CourseDetail opens (or resumes) the course session and returns its
// current snapshot. A fresh session loads from the course service; a live
// one answers from session state without another upstream round trip.
func CourseDetail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid course id")
			return
		}
		bearer := mw.BearerFrom(r.Context())

		if sess, ok := d.Sessions.Get(bearer, courseID); ok {
			sess.Touch()
			writeJSON(w, http.StatusOK, renderSnapshot(sess.Snapshot()))
			return
		}

		sess := session.New(d.API, d.Bus, d.Logger, bearer, courseID)
		if err := sess.Load(r.Context()); err != nil {
			snap := sess.Snapshot()
			writeJSON(w, upstreamStatus(err), sessionView{
				State: snap.State.String(),
				Error: snap.Error,
			})
			return
		}

		d.Sessions.Add(bearer, sess)
		writeJSON(w, http.StatusOK, renderSnapshot(sess.Snapshot()))
	}
}

// SelectModule changes the active module of a live session. Local only.
func SelectModule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, moduleID, ok := sessionAndModule(d, w, r)
		if !ok {
			return
		}
		if !sess.SelectModule(moduleID) {
			writeError(w, http.StatusNotFound, "module not found in course")
			return
		}
		writeJSON(w, http.StatusOK, renderSnapshot(sess.Snapshot()))
	}
}

// CompleteModule marks a module completed through the course service and
// returns the updated snapshot.
func CompleteModule(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, moduleID, ok := sessionAndModule(d, w, r)
		if !ok {
			return
		}
		if err := sess.MarkModuleComplete(r.Context(), moduleID); err != nil {
			d.Logger.Warn("module completion failed",
				logger.Int64("module_id", moduleID),
				logger.Error(err))
			writeError(w, upstreamStatus(err), "module completion failed")
			return
		}
		writeJSON(w, http.StatusOK, renderSnapshot(sess.Snapshot()))
	}
}

// ToggleCourseBookmark flips the bookmark on a live session's course.
func ToggleCourseBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := liveSession(d, w, r)
		if !ok {
			return
		}
		if err := sess.ToggleBookmark(r.Context()); err != nil {
			writeError(w, upstreamStatus(err), "bookmark toggle failed")
			return
		}
		snap := sess.Snapshot()
		writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": snap.Course.Bookmarked})
	}
}

// DiscardSession ends the session for a course (navigation away).
func DiscardSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseIDParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid course id")
			return
		}
		if !d.Sessions.Remove(mw.BearerFrom(r.Context()), courseID) {
			writeError(w, http.StatusNotFound, "no active session for course")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func liveSession(d deps.Deps, w http.ResponseWriter, r *http.Request) (*session.CourseSession, bool) {
	courseID, ok := courseIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return nil, false
	}
	sess, ok := d.Sessions.Get(mw.BearerFrom(r.Context()), courseID)
	if !ok {
		writeError(w, http.StatusNotFound, "no active session for course")
		return nil, false
	}
	sess.Touch()
	return sess, true
}

func sessionAndModule(d deps.Deps, w http.ResponseWriter, r *http.Request) (*session.CourseSession, int64, bool) {
	sess, ok := liveSession(d, w, r)
	if !ok {
		return nil, 0, false
	}
	moduleID, err := strconv.ParseInt(chi.URLParam(r, "moduleID"), 10, 64)
	if err != nil || moduleID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid module id")
		return nil, 0, false
	}
	return sess, moduleID, true
}
